package models

import (
	"fmt"
	"time"
)

// StockStatus classifies an inventory item's stock level relative to its
// reorder point.
type StockStatus string

const (
	StockCritical StockStatus = "Critical"
	StockLow      StockStatus = "Low"
	StockAdequate StockStatus = "Adequate"
	StockGood     StockStatus = "Good"
)

// InventoryRecord tracks one item's stock at one store. Its document id is
// always inventory_id; store_id alone is not unique across the store's items.
type InventoryRecord struct {
	InventoryID           string      `json:"inventory_id"`
	StoreID               string      `json:"store_id"`
	ItemName              string      `json:"item_name"`
	Category              string      `json:"category,omitempty"`
	CurrentStock          int         `json:"current_stock"`
	ReorderPoint          int         `json:"reorder_point"`
	MaxStock              int         `json:"max_stock,omitempty"`
	DailyConsumption      float64     `json:"daily_consumption"`
	Status                StockStatus `json:"status"`
	PredictedStockoutDate time.Time   `json:"predicted_stockout_date"`
	Timestamp             time.Time   `json:"timestamp"`
}

// ClassifyStock derives the stock status from the current level and reorder
// point alone.
func ClassifyStock(currentStock, reorderPoint int) StockStatus {
	switch {
	case float64(currentStock) <= float64(reorderPoint)*0.5:
		return StockCritical
	case currentStock <= reorderPoint:
		return StockLow
	case currentStock <= reorderPoint*2:
		return StockAdequate
	default:
		return StockGood
	}
}

// Validate checks the record invariants after loading from the store.
func (r *InventoryRecord) Validate() error {
	if r.InventoryID == "" {
		return fmt.Errorf("inventory record missing inventory_id")
	}
	if r.CurrentStock < 0 {
		return fmt.Errorf("inventory %s: negative stock %d", r.InventoryID, r.CurrentStock)
	}
	return nil
}
