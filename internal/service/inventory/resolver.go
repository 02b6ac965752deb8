package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/domain/models"
)

// defaultStockoutHorizon is projected when an item has no recorded daily
// consumption rate.
const defaultStockoutHorizon = 30 * 24 * time.Hour

// Lookup finds the inventory record for a (store, item) pair.
type Lookup interface {
	FindInventoryItem(ctx context.Context, storeID, itemName string) (*models.InventoryRecord, error)
}

// Resolver decrements store inventory per order line and recomputes the
// derived status and stockout projection.
type Resolver struct {
	repo   Lookup
	logger *zap.Logger
}

// NewResolver wires a resolver over the inventory lookup.
func NewResolver(repo Lookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{repo: repo, logger: logger}
}

// ConsumeLines resolves every order line against the store's inventory and
// returns the mutated records. A line with no matching record has no
// inventory effect and is skipped; that is degraded behavior, not an error.
func (r *Resolver) ConsumeLines(ctx context.Context, storeID string, items []models.OrderItem, now time.Time) ([]*models.InventoryRecord, error) {
	records := make([]*models.InventoryRecord, 0, len(items))

	for _, item := range items {
		record, err := r.repo.FindInventoryItem(ctx, storeID, item.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve inventory line %q: %w", item.Name, err)
		}
		if record == nil {
			r.logger.Debug("no inventory record for order line",
				zap.String("store_id", storeID),
				zap.String("item", item.Name))
			continue
		}

		Consume(record, item.Quantity, now)
		records = append(records, record)
	}

	return records, nil
}

// Consume applies a stock decrement to the record in place, flooring at
// zero, and recomputes status and the predicted stockout date.
func Consume(record *models.InventoryRecord, quantity int, now time.Time) {
	newStock := record.CurrentStock - quantity
	if newStock < 0 {
		newStock = 0
	}

	record.CurrentStock = newStock
	record.Status = models.ClassifyStock(newStock, record.ReorderPoint)
	record.PredictedStockoutDate = projectStockout(record, now)
	record.Timestamp = now
}

func projectStockout(record *models.InventoryRecord, now time.Time) time.Time {
	if record.DailyConsumption <= 0 {
		return now.Add(defaultStockoutHorizon)
	}

	days := float64(record.CurrentStock-record.ReorderPoint) / record.DailyConsumption
	if days < 0 {
		days = 0
	}
	return now.Add(time.Duration(days * 24 * float64(time.Hour)))
}
