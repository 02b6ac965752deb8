package models

import "time"

// InventorySnapshot is the archived result of one scheduled inventory sweep
// for a single store.
type InventorySnapshot struct {
	StoreID       string            `bson:"store_id" json:"store_id"`
	TakenAt       time.Time         `bson:"taken_at" json:"taken_at"`
	TotalItems    int               `bson:"total_items" json:"total_items"`
	CriticalItems int               `bson:"critical_items" json:"critical_items"`
	LowItems      int               `bson:"low_items" json:"low_items"`
	AdequateItems int               `bson:"adequate_items" json:"adequate_items"`
	Items         []InventoryRecord `bson:"items" json:"items"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
}
