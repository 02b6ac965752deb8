package elastic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/config"
	"github.com/beeloyalty/engine/internal/domain/models"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

// BatchWriter describes the write coordinator the orchestrators submit
// mutations through. Mutations are built via the typed per-kind helpers, so
// every document is keyed by its own identifier at the call site.
type BatchWriter interface {
	TransactionDoc(txn *models.Transaction) es.Mutation
	CustomerDoc(account *models.CustomerAccount) es.Mutation
	InventoryDoc(record *models.InventoryRecord) es.Mutation
	Commit(ctx context.Context, mutations []es.Mutation) error
}

// Writer serializes entity mutations into one bulk round trip against the
// document store, tolerating a bounded fraction of per-document failures,
// and refreshes the touched indices for read-after-write visibility.
type Writer struct {
	client    *es.Client
	indices   config.IndicesConfig
	tolerance float64
	logger    *zap.Logger
}

// NewWriter wires the batch write coordinator.
func NewWriter(client *es.Client, indices config.IndicesConfig, tolerance float64, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{client: client, indices: indices, tolerance: tolerance, logger: logger}
}

// TransactionDoc builds the ledger mutation for one transaction, keyed by
// transaction id.
func (w *Writer) TransactionDoc(txn *models.Transaction) es.Mutation {
	return es.Mutation{Index: w.indices.Transactions, ID: txn.TransactionID, Doc: txn}
}

// CustomerDoc builds the account mutation, keyed by customer id.
func (w *Writer) CustomerDoc(account *models.CustomerAccount) es.Mutation {
	return es.Mutation{Index: w.indices.Customers, ID: account.CustomerID, Doc: account}
}

// InventoryDoc builds the stock mutation, keyed by the record's dedicated
// inventory id. Keying by store id would silently collide across the items
// of one store.
func (w *Writer) InventoryDoc(record *models.InventoryRecord) es.Mutation {
	return es.Mutation{Index: w.indices.Inventory, ID: record.InventoryID, Doc: record}
}

// DocumentFor builds a mutation for an untyped document, deriving its id
// from the kind's priority fields. Used by the provisioning bulk-load path.
func (w *Writer) DocumentFor(kind string, doc map[string]any) (es.Mutation, error) {
	index, err := w.indexForKind(kind)
	if err != nil {
		return es.Mutation{}, err
	}
	return es.Mutation{Index: index, ID: es.DeriveDocumentID(kind, doc), Doc: doc}, nil
}

func (w *Writer) indexForKind(kind string) (string, error) {
	switch kind {
	case es.KindCustomers:
		return w.indices.Customers, nil
	case es.KindTransactions:
		return w.indices.Transactions, nil
	case es.KindInventory:
		return w.indices.Inventory, nil
	case es.KindStores:
		return w.indices.Stores, nil
	case es.KindMenu:
		return w.indices.Menu, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

// Commit submits all mutations in one bulk request and refreshes the
// touched indices. The write succeeds as long as the fraction of failing
// documents stays below the configured tolerance; sub-tolerance failures
// are logged and swallowed, trading per-line fidelity for throughput.
func (w *Writer) Commit(ctx context.Context, mutations []es.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	report, err := w.client.Bulk(ctx, mutations)
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	if report.Failed > 0 {
		w.logger.Warn("bulk write had per-document errors",
			zap.Int("failed", report.Failed),
			zap.Int("documents", report.Documents))
		for i, itemErr := range report.ItemErrors {
			if i == 3 {
				break
			}
			w.logger.Error("bulk item error", zap.String("error", itemErr))
		}

		if float64(report.Failed) >= float64(report.Documents)*w.tolerance {
			return fmt.Errorf("commit batch: %d of %d documents failed", report.Failed, report.Documents)
		}
	}

	if err := w.client.Refresh(ctx, touchedIndices(mutations)...); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	w.logger.Info("batch committed",
		zap.Int("documents", report.Documents),
		zap.Int("failed", report.Failed))
	return nil
}

func touchedIndices(mutations []es.Mutation) []string {
	seen := make(map[string]struct{}, 3)
	indices := make([]string, 0, 3)
	for _, m := range mutations {
		if _, ok := seen[m.Index]; ok {
			continue
		}
		seen[m.Index] = struct{}{}
		indices = append(indices, m.Index)
	}
	return indices
}
