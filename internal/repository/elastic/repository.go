package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/config"
	"github.com/beeloyalty/engine/internal/domain/models"
	"github.com/beeloyalty/engine/pkg/apierror"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

// Reader describes the read operations the transaction engine needs.
type Reader interface {
	GetCustomer(ctx context.Context, customerID string) (*models.CustomerAccount, error)
	FetchCustomers(ctx context.Context, customerIDs []string) (map[string]*models.CustomerAccount, error)
	FindInventoryItem(ctx context.Context, storeID, itemName string) (*models.InventoryRecord, error)
}

// Repository reads domain entities and analytics out of the document store.
type Repository struct {
	client  *es.Client
	indices config.IndicesConfig
	elser   string
	logger  *zap.Logger
}

// NewRepository wires a repository over the document-store client.
func NewRepository(client *es.Client, indices config.IndicesConfig, elserModelID string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{client: client, indices: indices, elser: elserModelID, logger: logger}
}

// GetCustomer fetches one customer account by id.
func (r *Repository) GetCustomer(ctx context.Context, customerID string) (*models.CustomerAccount, error) {
	source, err := r.client.GetDocument(ctx, r.indices.Customers, customerID)
	if err != nil {
		if errors.Is(err, es.ErrNotFound) {
			return nil, apierror.NotFound("Customer not found")
		}
		return nil, fmt.Errorf("get customer %s: %w", customerID, err)
	}

	account, err := decodeCustomer(customerID, source)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieved customer", zap.String("customer_id", customerID))
	return account, nil
}

// FetchCustomers loads all given customer ids in a single terms query.
// Unknown ids are simply absent from the returned map.
func (r *Repository) FetchCustomers(ctx context.Context, customerIDs []string) (map[string]*models.CustomerAccount, error) {
	if len(customerIDs) == 0 {
		return map[string]*models.CustomerAccount{}, nil
	}

	query := map[string]any{
		"query": map[string]any{"terms": map[string]any{"_id": customerIDs}},
		"size":  len(customerIDs),
	}

	result, err := r.client.Search(ctx, r.indices.Customers, query)
	if err != nil {
		return nil, fmt.Errorf("batch fetch customers: %w", err)
	}

	accounts := make(map[string]*models.CustomerAccount, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		account, err := decodeCustomer(hit.ID, hit.Source)
		if err != nil {
			return nil, err
		}
		accounts[hit.ID] = account
	}

	return accounts, nil
}

// FindInventoryItem returns the first inventory record matching the store
// and item name, or nil when no record exists. First match wins; the lookup
// never errors on absence because a missing record only skips the order
// line's inventory effect.
func (r *Repository) FindInventoryItem(ctx context.Context, storeID, itemName string) (*models.InventoryRecord, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{"term": map[string]any{"store_id": storeID}},
					{"match": map[string]any{"item_name": itemName}},
				},
			},
		},
		"size": 1,
	}

	result, err := r.client.Search(ctx, r.indices.Inventory, query)
	if err != nil {
		return nil, fmt.Errorf("find inventory %s/%s: %w", storeID, itemName, err)
	}
	if len(result.Hits.Hits) == 0 {
		return nil, nil
	}

	hit := result.Hits.Hits[0]
	record := new(models.InventoryRecord)
	if err := json.Unmarshal(hit.Source, record); err != nil {
		return nil, fmt.Errorf("decode inventory document %s: %w", hit.ID, err)
	}
	if record.InventoryID == "" {
		record.InventoryID = hit.ID
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory document: %w", err)
	}

	return record, nil
}

func decodeCustomer(id string, source json.RawMessage) (*models.CustomerAccount, error) {
	account := new(models.CustomerAccount)
	if err := json.Unmarshal(source, account); err != nil {
		return nil, fmt.Errorf("decode customer document %s: %w", id, err)
	}
	if account.CustomerID == "" {
		account.CustomerID = id
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("invalid customer document: %w", err)
	}
	return account, nil
}

// MenuItem is a menu search or recommendation result.
type MenuItem struct {
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Price           float64        `json:"price"`
	Description     string         `json:"description"`
	NutritionalInfo map[string]any `json:"nutritional_info,omitempty"`
	IsNew           bool           `json:"is_new"`
	IsBestseller    bool           `json:"is_bestseller"`
	PointsValue     int            `json:"points_value"`
	RelevanceScore  float64        `json:"relevance_score"`
}

// SearchMenu runs a semantic query over the menu index.
func (r *Repository) SearchMenu(ctx context.Context, queryText string, limit int) ([]MenuItem, error) {
	result, err := r.client.SemanticSearch(ctx, r.indices.Menu, r.elser, queryText, limit, []string{
		"name", "category", "price", "description", "nutritional_info",
		"is_new", "is_bestseller", "points_value",
	})
	if err != nil {
		return nil, fmt.Errorf("menu search: %w", err)
	}

	items := make([]MenuItem, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var item MenuItem
		if err := json.Unmarshal(hit.Source, &item); err != nil {
			return nil, fmt.Errorf("decode menu document %s: %w", hit.ID, err)
		}
		item.RelevanceScore = hit.Score
		items = append(items, item)
	}

	r.logger.Info("menu search completed",
		zap.String("query", queryText), zap.Int("results", len(items)))
	return items, nil
}

// Recommendations builds a semantic query from the customer's favorite items
// and returns matching menu entries.
func (r *Repository) Recommendations(ctx context.Context, account *models.CustomerAccount, limit int) ([]MenuItem, error) {
	seed := strings.TrimSpace(strings.Join(account.Preferences.FavoriteItems, " "))
	if seed == "" {
		seed = "popular bestseller recommended"
	}
	return r.SearchMenu(ctx, seed, limit)
}

// StorePerformance combines a store document with its recent activity.
type StorePerformance struct {
	StoreID       string         `json:"store_id"`
	StoreName     string         `json:"store_name,omitempty"`
	City          string         `json:"city,omitempty"`
	RecentOrders  int            `json:"recent_orders"`
	RecentRevenue float64        `json:"recent_revenue"`
	AvgOrderValue float64        `json:"avg_order_value"`
	Channels      map[string]int `json:"channels"`
}

type storeBucketAgg struct {
	Buckets []struct {
		Key          string `json:"key"`
		TotalRevenue struct {
			Value float64 `json:"value"`
		} `json:"total_revenue"`
		OrderCount struct {
			Value float64 `json:"value"`
		} `json:"order_count"`
		AvgOrder struct {
			Value *float64 `json:"value"`
		} `json:"avg_order"`
		ChannelBreakdown struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"channel_breakdown"`
	} `json:"buckets"`
}

// StoreAnalytics lists all stores enriched with last-24h transaction
// aggregations.
func (r *Repository) StoreAnalytics(ctx context.Context, now time.Time) ([]StorePerformance, error) {
	storesResult, err := r.client.Search(ctx, r.indices.Stores, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"size":  20,
	})
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	if len(storesResult.Hits.Hits) == 0 {
		return nil, apierror.NotFound("No stores found")
	}

	aggQuery := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"gte": now.Add(-24 * time.Hour).Format(time.RFC3339)},
			},
		},
		"size": 0,
		"aggs": map[string]any{
			"stores": map[string]any{
				"terms": map[string]any{"field": "store_id", "size": 20},
				"aggs": map[string]any{
					"total_revenue":     map[string]any{"sum": map[string]any{"field": "order_total"}},
					"order_count":       map[string]any{"value_count": map[string]any{"field": "transaction_id"}},
					"avg_order":         map[string]any{"avg": map[string]any{"field": "order_total"}},
					"channel_breakdown": map[string]any{"terms": map[string]any{"field": "channel"}},
				},
			},
		},
	}

	aggResult, err := r.client.Search(ctx, r.indices.Transactions, aggQuery)
	if err != nil {
		return nil, fmt.Errorf("store transaction aggregations: %w", err)
	}

	performance := map[string]StorePerformance{}
	if raw, ok := aggResult.Aggregations["stores"]; ok {
		var agg storeBucketAgg
		if err := json.Unmarshal(raw, &agg); err != nil {
			return nil, fmt.Errorf("decode store aggregations: %w", err)
		}
		for _, bucket := range agg.Buckets {
			perf := StorePerformance{
				StoreID:       bucket.Key,
				RecentOrders:  int(bucket.OrderCount.Value),
				RecentRevenue: bucket.TotalRevenue.Value,
				Channels:      map[string]int{},
			}
			if bucket.AvgOrder.Value != nil {
				perf.AvgOrderValue = *bucket.AvgOrder.Value
			}
			for _, ch := range bucket.ChannelBreakdown.Buckets {
				perf.Channels[ch.Key] = ch.DocCount
			}
			performance[bucket.Key] = perf
		}
	}

	stores := make([]StorePerformance, 0, len(storesResult.Hits.Hits))
	for _, hit := range storesResult.Hits.Hits {
		var store StorePerformance
		if err := json.Unmarshal(hit.Source, &store); err != nil {
			return nil, fmt.Errorf("decode store document %s: %w", hit.ID, err)
		}
		if perf, ok := performance[store.StoreID]; ok {
			store.RecentOrders = perf.RecentOrders
			store.RecentRevenue = perf.RecentRevenue
			store.AvgOrderValue = perf.AvgOrderValue
			store.Channels = perf.Channels
		} else if store.Channels == nil {
			store.Channels = map[string]int{}
		}
		stores = append(stores, store)
	}

	r.logger.Info("store analytics retrieved", zap.Int("stores", len(stores)))
	return stores, nil
}

// InventorySummary counts a store's items per status bucket.
type InventorySummary struct {
	TotalItems    int `json:"total_items"`
	CriticalItems int `json:"critical_items"`
	LowItems      int `json:"low_items"`
	AdequateItems int `json:"adequate_items"`
}

// ReorderRecommendation flags an item needing replenishment.
type ReorderRecommendation struct {
	Item              string    `json:"item"`
	Action            string    `json:"action"`
	CurrentStock      int       `json:"current_stock"`
	ReorderPoint      int       `json:"reorder_point"`
	PredictedStockout time.Time `json:"predicted_stockout"`
	Priority          string    `json:"priority"`
}

// InventoryReport is a store's full inventory picture.
type InventoryReport struct {
	StoreID         string                   `json:"store_id"`
	Summary         InventorySummary         `json:"inventory_summary"`
	Items           []models.InventoryRecord `json:"inventory_items"`
	Recommendations []ReorderRecommendation  `json:"recommendations"`
	LastUpdated     time.Time                `json:"last_updated"`
}

// StoreInventory loads a store's inventory items with status counts and
// reorder recommendations.
func (r *Repository) StoreInventory(ctx context.Context, storeID string, now time.Time) (*InventoryReport, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{
					{"term": map[string]any{"store_id": storeID}},
				},
			},
		},
		"size": 100,
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
			{"status": map[string]any{"order": "desc"}},
			{"current_stock": map[string]any{"order": "asc"}},
		},
	}

	result, err := r.client.Search(ctx, r.indices.Inventory, query)
	if err != nil {
		return nil, fmt.Errorf("store inventory %s: %w", storeID, err)
	}
	if len(result.Hits.Hits) == 0 {
		return nil, apierror.NotFound(fmt.Sprintf("No inventory data found for store %s", storeID))
	}

	report := &InventoryReport{StoreID: storeID, LastUpdated: now}
	for _, hit := range result.Hits.Hits {
		var record models.InventoryRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			return nil, fmt.Errorf("decode inventory document %s: %w", hit.ID, err)
		}
		report.Items = append(report.Items, record)

		report.Summary.TotalItems++
		switch record.Status {
		case models.StockCritical:
			report.Summary.CriticalItems++
			report.Recommendations = append(report.Recommendations, ReorderRecommendation{
				Item:              record.ItemName,
				Action:            "CRITICAL: Immediate reorder required!",
				CurrentStock:      record.CurrentStock,
				ReorderPoint:      record.ReorderPoint,
				PredictedStockout: record.PredictedStockoutDate,
				Priority:          "high",
			})
		case models.StockLow:
			report.Summary.LowItems++
			report.Recommendations = append(report.Recommendations, ReorderRecommendation{
				Item:              record.ItemName,
				Action:            "WARNING: Schedule reorder soon",
				CurrentStock:      record.CurrentStock,
				ReorderPoint:      record.ReorderPoint,
				PredictedStockout: record.PredictedStockoutDate,
				Priority:          "medium",
			})
		default:
			report.Summary.AdequateItems++
		}
	}

	r.logger.Info("inventory analytics retrieved",
		zap.String("store_id", storeID),
		zap.Int("items", report.Summary.TotalItems),
		zap.Int("critical", report.Summary.CriticalItems))
	return report, nil
}
