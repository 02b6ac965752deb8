package transactions

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/domain/models"
	"github.com/beeloyalty/engine/pkg/apierror"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

// CreateBulk processes many orders with O(1) store round trips: one batch
// fetch of all referenced customers, pure in-memory computation per request,
// and exactly one combined bulk write plus one refresh.
//
// Requests are processed in array order; later requests for a customer see
// that customer's already-updated in-memory state. Requests referencing an
// unknown customer are skipped.
func (s *Service) CreateBulk(ctx context.Context, reqs []models.OrderRequest) (*models.BulkResult, error) {
	if len(reqs) == 0 {
		return nil, apierror.Validation("No transactions to process")
	}

	started := time.Now()

	accounts, err := s.reader.FetchCustomers(ctx, distinctCustomerIDs(reqs))
	if err != nil {
		s.logger.Error("bulk customer fetch failed", zap.Error(err))
		return nil, apierror.Internal("Bulk processing failed")
	}

	var (
		txnMutations       []es.Mutation
		inventoryMutations []es.Mutation
		touched            = map[string]*models.CustomerAccount{}
		totalRevenue       float64
	)

	for _, req := range reqs {
		account, ok := accounts[req.CustomerID]
		if !ok {
			s.logger.Debug("skipping order for unknown customer",
				zap.String("customer_id", req.CustomerID))
			continue
		}

		now := time.Now()
		txn, _ := s.processOrder(account, req, now)
		touched[req.CustomerID] = account
		totalRevenue += txn.OrderTotal
		txnMutations = append(txnMutations, s.writer.TransactionDoc(txn))

		records, err := s.resolver.ConsumeLines(ctx, txn.StoreID, req.Items, now)
		if err != nil {
			s.logger.Error("bulk inventory resolution failed", zap.Error(err))
			return nil, apierror.Internal("Bulk processing failed")
		}
		for _, record := range records {
			inventoryMutations = append(inventoryMutations, s.writer.InventoryDoc(record))
		}
	}

	mutations := make([]es.Mutation, 0, len(txnMutations)+len(touched)+len(inventoryMutations))
	mutations = append(mutations, txnMutations...)
	for _, account := range touched {
		mutations = append(mutations, s.writer.CustomerDoc(account))
	}
	mutations = append(mutations, inventoryMutations...)

	if err := s.writer.Commit(ctx, mutations); err != nil {
		s.logger.Error("bulk batch commit failed", zap.Error(err))
		return nil, apierror.Internal("Bulk update failed")
	}

	s.logger.Info("bulk transactions processed",
		zap.Int("transactions", len(txnMutations)),
		zap.Int("customers", len(touched)),
		zap.Float64("total_revenue", totalRevenue),
		zap.Duration("elapsed", time.Since(started)))

	return &models.BulkResult{
		TransactionsCreated: len(txnMutations),
		TotalRevenue:        totalRevenue,
	}, nil
}

func distinctCustomerIDs(reqs []models.OrderRequest) []string {
	seen := make(map[string]struct{}, len(reqs))
	ids := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := seen[req.CustomerID]; ok {
			continue
		}
		seen[req.CustomerID] = struct{}{}
		ids = append(ids, req.CustomerID)
	}
	return ids
}
