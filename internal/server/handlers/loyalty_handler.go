package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/domain/models"
	repo "github.com/beeloyalty/engine/internal/repository/elastic"
	"github.com/beeloyalty/engine/internal/service/transactions"
	"github.com/beeloyalty/engine/pkg/apierror"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

// LoyaltyHandler adapts the transaction engine and analytics queries to HTTP.
type LoyaltyHandler struct {
	svc    *transactions.Service
	repo   *repo.Repository
	writer *repo.Writer
	client *es.Client
	logger *zap.Logger
}

// NewLoyaltyHandler constructs the HTTP handler adapter.
func NewLoyaltyHandler(svc *transactions.Service, repository *repo.Repository, writer *repo.Writer, client *es.Client, logger *zap.Logger) *LoyaltyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoyaltyHandler{svc: svc, repo: repository, writer: writer, client: client, logger: logger}
}

// Health probes the backing cluster.
func (h *LoyaltyHandler) Health(c *gin.Context) {
	health, err := h.client.HealthCheck(c.Request.Context())
	if err != nil {
		h.logger.Error("cluster health probe failed", zap.Error(err))
		apiErr := apierror.Unavailable("Document store unreachable")
		c.JSON(apiErr.StatusCode, gin.H{
			"status":    "unhealthy",
			"error":     apiErr.Message,
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"cluster_status": health.Status,
		"cluster_name":   health.ClusterName,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// GetCustomer returns one customer profile.
func (h *LoyaltyHandler) GetCustomer(c *gin.Context) {
	account, err := h.repo.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customer": account})
}

// Recommendations returns menu suggestions seeded from the customer's
// favorite items.
func (h *LoyaltyHandler) Recommendations(c *gin.Context) {
	limit := intQuery(c, "limit", 8)

	account, err := h.repo.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items, err := h.repo.Recommendations(c.Request.Context(), account, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "recommendations": items})
}

// Redeem exchanges a customer's points for an item.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	var req models.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid redeem payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.svc.Redeem(c.Request.Context(), c.Param("id"), req.PointsToRedeem, req.ItemName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("Successfully redeemed %d points for %s", req.PointsToRedeem, req.ItemName),
		"new_balance": result.NewBalance,
	})
}

// CreateTransaction processes a single order.
func (h *LoyaltyHandler) CreateTransaction(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transaction payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if req.Channel == "" {
		req.Channel = models.ChannelDineIn
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        fmt.Sprintf("Transaction successful! Earned %d BeePoints.", result.PointsEarned),
		"transaction_id": result.TransactionID,
		"order_total":    result.OrderTotal,
		"points_earned":  result.PointsEarned,
		"tier_upgraded":  result.TierUpgraded,
		"new_tier":       result.NewTier,
	})
}

type bulkRequest struct {
	Requests []models.OrderRequest `json:"requests"`
}

// CreateBulkTransactions processes an explicit list of orders in one batch.
func (h *LoyaltyHandler) CreateBulkTransactions(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bulk payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	result, err := h.svc.CreateBulk(c.Request.Context(), req.Requests)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"transactions_created": result.TransactionsCreated,
		"total_revenue":        result.TotalRevenue,
	})
}

// MenuSearch runs a semantic menu query.
func (h *LoyaltyHandler) MenuSearch(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "query is required"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	items, err := h.repo.SearchMenu(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": items})
}

// StoreAnalytics reports per-store performance over the last 24 hours.
func (h *LoyaltyHandler) StoreAnalytics(c *gin.Context) {
	stores, err := h.repo.StoreAnalytics(c.Request.Context(), time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"stores":       stores,
		"total_stores": len(stores),
		"last_updated": time.Now().Format(time.RFC3339),
	})
}

// InventoryAnalytics reports one store's inventory picture.
func (h *LoyaltyHandler) InventoryAnalytics(c *gin.Context) {
	storeID := c.Query("store_id")
	if storeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "store_id is required"})
		return
	}

	report, err := h.repo.StoreInventory(c.Request.Context(), storeID, time.Now())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"store_id":          report.StoreID,
		"inventory_summary": report.Summary,
		"inventory_items":   report.Items,
		"recommendations":   report.Recommendations,
		"last_updated":      report.LastUpdated.Format(time.RFC3339),
	})
}

// BulkLoadDocuments writes raw documents into one entity kind's index,
// deriving ids through the per-kind priority rules. Provisioning hook.
func (h *LoyaltyHandler) BulkLoadDocuments(c *gin.Context) {
	var docs []map[string]any
	if err := c.ShouldBindJSON(&docs); err != nil || len(docs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "a non-empty document list is required"})
		return
	}

	kind := c.Param("kind")
	mutations := make([]es.Mutation, 0, len(docs))
	for _, doc := range docs {
		mutation, err := h.writer.DocumentFor(kind, doc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		mutations = append(mutations, mutation)
	}

	if err := h.writer.Commit(c.Request.Context(), mutations); err != nil {
		h.logger.Error("bulk document load failed", zap.String("kind", kind), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "bulk load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "documents_loaded": len(mutations)})
}

func (h *LoyaltyHandler) respondError(c *gin.Context, err error) {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode, gin.H{"success": false, "error": apiErr.Message})
		return
	}

	h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
