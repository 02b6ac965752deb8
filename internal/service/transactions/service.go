package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/domain/models"
	repo "github.com/beeloyalty/engine/internal/repository/elastic"
	"github.com/beeloyalty/engine/internal/service/inventory"
	"github.com/beeloyalty/engine/internal/service/loyalty"
	"github.com/beeloyalty/engine/pkg/apierror"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

const defaultStoreID = "store_001"

// Service orchestrates order and redemption processing: fetch, compute,
// mutate in memory, then commit everything through one batch write.
type Service struct {
	reader   repo.Reader
	writer   repo.BatchWriter
	resolver *inventory.Resolver
	logger   *zap.Logger
}

// NewService wires the transaction orchestrator.
func NewService(reader repo.Reader, writer repo.BatchWriter, resolver *inventory.Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, writer: writer, resolver: resolver, logger: logger}
}

// Create processes a single order: it computes pricing and points, advances
// the customer's loyalty state, decrements inventory per line, and commits
// the transaction, account, and inventory documents as one batch.
//
// Concurrent orders for the same customer are not serialized: both callers
// read the same prior account state and the last batch write wins.
func (s *Service) Create(ctx context.Context, req models.OrderRequest) (*models.TransactionResult, error) {
	if req.CustomerID == "" || len(req.Items) == 0 {
		return nil, apierror.Validation("Missing required fields")
	}

	account, err := s.reader.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	txn, upgraded := s.processOrder(account, req, now)

	records, err := s.resolver.ConsumeLines(ctx, txn.StoreID, req.Items, now)
	if err != nil {
		s.logger.Error("inventory resolution failed", zap.Error(err))
		return nil, apierror.Internal("Failed to process transaction")
	}

	mutations := make([]es.Mutation, 0, 2+len(records))
	mutations = append(mutations, s.writer.TransactionDoc(txn), s.writer.CustomerDoc(account))
	for _, record := range records {
		mutations = append(mutations, s.writer.InventoryDoc(record))
	}

	if err := s.writer.Commit(ctx, mutations); err != nil {
		s.logger.Error("transaction batch commit failed",
			zap.String("transaction_id", txn.TransactionID), zap.Error(err))
		return nil, apierror.Internal("Failed to process transaction")
	}

	s.logger.Info("created transaction",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("customer_id", req.CustomerID),
		zap.Float64("order_total", txn.OrderTotal))

	return &models.TransactionResult{
		TransactionID: txn.TransactionID,
		OrderTotal:    txn.OrderTotal,
		PointsEarned:  txn.PointsEarned,
		TierUpgraded:  upgraded,
		NewTier:       account.LoyaltyProfile.Tier,
	}, nil
}

// Redeem exchanges points for an item, guarding the balance before any
// mutation, and commits the account as a single-document batch.
func (s *Service) Redeem(ctx context.Context, customerID string, points int, itemName string) (*models.RedeemResult, error) {
	if customerID == "" {
		return nil, apierror.Validation("Missing customer id")
	}
	if points <= 0 {
		return nil, apierror.Validation("Points to redeem must be positive")
	}

	account, err := s.reader.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := loyalty.ApplyRedemption(account, points, time.Now()); err != nil {
		return nil, err
	}

	if err := s.writer.Commit(ctx, []es.Mutation{s.writer.CustomerDoc(account)}); err != nil {
		s.logger.Error("redemption commit failed",
			zap.String("customer_id", customerID), zap.Error(err))
		return nil, apierror.Internal("Failed to update customer points")
	}

	s.logger.Info("redeemed points",
		zap.String("customer_id", customerID),
		zap.Int("points", points),
		zap.String("item", itemName))

	return &models.RedeemResult{NewBalance: account.LoyaltyProfile.TotalPoints}, nil
}

// processOrder runs the pure computation and in-memory mutation for one
// order against an already-fetched account. It returns the ledger record
// and whether the customer's tier changed.
func (s *Service) processOrder(account *models.CustomerAccount, req models.OrderRequest, now time.Time) (*models.Transaction, bool) {
	orderTotal := loyalty.OrderTotal(req.Items)
	points := loyalty.CalculatePoints(orderTotal, req.Channel, account.LoyaltyProfile.Tier)

	storeID := req.Store.StoreID
	if storeID == "" {
		storeID = defaultStoreID
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = "cash"
	}

	weekday := now.Weekday()
	txn := &models.Transaction{
		TransactionID: newTransactionID(req.CustomerID),
		CustomerID:    req.CustomerID,
		StoreID:       storeID,
		Timestamp:     now,
		Channel:       req.Channel,
		Location:      req.Store,
		Items:         req.Items,
		OrderTotal:    orderTotal,
		PointsEarned:  points,
		PaymentMethod: payment,
		OrderType:     req.Channel,
		HourOfDay:     now.Hour(),
		DayOfWeek:     weekday.String(),
		IsWeekend:     weekday == time.Saturday || weekday == time.Sunday,
	}

	upgraded := loyalty.ApplyOrder(account, orderTotal, points, now)
	return txn, upgraded
}

func newTransactionID(customerID string) string {
	return fmt.Sprintf("txn_%s_%s", customerID, uuid.NewString()[:8])
}
