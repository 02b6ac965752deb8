package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeloyalty/engine/internal/domain/models"
)

// fakeLookup serves inventory records keyed by store id + item name.
type fakeLookup struct {
	records map[string]*models.InventoryRecord
}

func (f *fakeLookup) FindInventoryItem(_ context.Context, storeID, itemName string) (*models.InventoryRecord, error) {
	rec, ok := f.records[storeID+"/"+itemName]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func TestConsumeDecrementsAndReclassifies(t *testing.T) {
	rec := &models.InventoryRecord{
		InventoryID:      "inv_001",
		StoreID:          "store_001",
		ItemName:         "Regular Fries",
		CurrentStock:     20,
		ReorderPoint:     30,
		DailyConsumption: 10,
		Status:           models.StockLow,
	}
	now := time.Now()

	Consume(rec, 25, now)

	assert.Equal(t, 0, rec.CurrentStock, "stock floors at zero")
	assert.Equal(t, models.StockCritical, rec.Status)
	assert.Equal(t, now, rec.Timestamp)
	// Already below the reorder point, stockout is projected as immediate.
	assert.Equal(t, now, rec.PredictedStockoutDate)
}

func TestConsumeStockoutProjection(t *testing.T) {
	rec := &models.InventoryRecord{
		InventoryID:      "inv_002",
		CurrentStock:     60,
		ReorderPoint:     20,
		DailyConsumption: 10,
	}
	now := time.Now()

	Consume(rec, 10, now)

	assert.Equal(t, 50, rec.CurrentStock)
	assert.Equal(t, now.Add(3*24*time.Hour), rec.PredictedStockoutDate)
}

func TestConsumeWithoutConsumptionRate(t *testing.T) {
	rec := &models.InventoryRecord{
		InventoryID:  "inv_003",
		CurrentStock: 50,
		ReorderPoint: 20,
	}
	now := time.Now()

	Consume(rec, 5, now)

	assert.Equal(t, now.Add(30*24*time.Hour), rec.PredictedStockoutDate)
}

func TestResolveLinesSkipsMissingRecords(t *testing.T) {
	lookup := &fakeLookup{records: map[string]*models.InventoryRecord{
		"store_001/Yumburger Solo": {
			InventoryID:      "inv_010",
			StoreID:          "store_001",
			ItemName:         "Yumburger Solo",
			CurrentStock:     100,
			ReorderPoint:     30,
			DailyConsumption: 10,
		},
	}}
	resolver := NewResolver(lookup, nil)

	items := []models.OrderItem{
		{Name: "Yumburger Solo", Price: 40, Quantity: 2},
		{Name: "Halo-Halo", Price: 55, Quantity: 1}, // no record at this store
	}

	records, err := resolver.ConsumeLines(context.Background(), "store_001", items, time.Now())

	require.NoError(t, err)
	require.Len(t, records, 1, "missing line has no inventory effect")
	assert.Equal(t, "inv_010", records[0].InventoryID)
	assert.Equal(t, 98, records[0].CurrentStock)
}

func TestResolveLinesOnePerOrderLine(t *testing.T) {
	lookup := &fakeLookup{records: map[string]*models.InventoryRecord{
		"store_001/Yumburger Solo": {
			InventoryID: "inv_010", StoreID: "store_001", ItemName: "Yumburger Solo",
			CurrentStock: 100, ReorderPoint: 30, DailyConsumption: 10,
		},
		"store_001/Regular Fries": {
			InventoryID: "inv_011", StoreID: "store_001", ItemName: "Regular Fries",
			CurrentStock: 40, ReorderPoint: 30, DailyConsumption: 5,
		},
	}}
	resolver := NewResolver(lookup, nil)

	items := []models.OrderItem{
		{Name: "Yumburger Solo", Price: 40, Quantity: 1},
		{Name: "Regular Fries", Price: 50, Quantity: 12},
	}

	records, err := resolver.ConsumeLines(context.Background(), "store_001", items, time.Now())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 99, records[0].CurrentStock)
	assert.Equal(t, 28, records[1].CurrentStock)
	assert.Equal(t, models.StockLow, records[1].Status)
}
