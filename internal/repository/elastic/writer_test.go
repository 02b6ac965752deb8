package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeloyalty/engine/internal/config"
	"github.com/beeloyalty/engine/internal/domain/models"
	es "github.com/beeloyalty/engine/pkg/clients/elastic"
)

func testIndices() config.IndicesConfig {
	return config.IndicesConfig{
		Customers:    "customers",
		Transactions: "transactions",
		Inventory:    "inventory",
		Stores:       "stores",
		Menu:         "menu",
	}
}

// bulkStub fakes the store's bulk and refresh endpoints, failing the first
// failDocs documents of every bulk submission.
type bulkStub struct {
	failDocs     int
	bulkCalls    int
	refreshCalls int
	refreshPath  string
}

func (s *bulkStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/_bulk":
		s.bulkCalls++
		body, _ := io.ReadAll(r.Body)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		docs := len(lines) / 2

		items := make([]map[string]any, 0, docs)
		for i := 0; i < docs; i++ {
			item := map[string]any{"_id": fmt.Sprintf("doc%d", i), "status": 201}
			if i < s.failDocs {
				item["status"] = 400
				item["error"] = map[string]any{"type": "version_conflict"}
			}
			items = append(items, map[string]any{"index": item})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": s.failDocs > 0, "items": items})

	case strings.HasSuffix(r.URL.Path, "/_refresh"):
		s.refreshCalls++
		s.refreshPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testWriter(t *testing.T, stub *bulkStub, tolerance float64) *Writer {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client := es.NewClient(config.ElasticConfig{
		Endpoint:       srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		BulkTimeout:    5 * time.Second,
	}, nil)

	return NewWriter(client, testIndices(), tolerance, nil)
}

func inventoryMutations(w *Writer, n int) []es.Mutation {
	muts := make([]es.Mutation, 0, n)
	for i := 0; i < n; i++ {
		muts = append(muts, w.InventoryDoc(&models.InventoryRecord{
			InventoryID: fmt.Sprintf("inv_%03d", i),
			StoreID:     "store_001",
		}))
	}
	return muts
}

func TestCommitSuccessRefreshesTouchedIndices(t *testing.T) {
	stub := &bulkStub{}
	writer := testWriter(t, stub, 0.10)

	txn := &models.Transaction{TransactionID: "txn_1", CustomerID: "mike001"}
	acct := &models.CustomerAccount{CustomerID: "mike001"}
	rec := &models.InventoryRecord{InventoryID: "inv_001"}

	err := writer.Commit(context.Background(), []es.Mutation{
		writer.TransactionDoc(txn),
		writer.CustomerDoc(acct),
		writer.InventoryDoc(rec),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, stub.bulkCalls)
	assert.Equal(t, 1, stub.refreshCalls)
	assert.Equal(t, "/transactions,customers,inventory/_refresh", stub.refreshPath)
}

func TestCommitToleratesFailuresBelowThreshold(t *testing.T) {
	// 1 of 20 documents failing is 5%, below the 10% tolerance.
	stub := &bulkStub{failDocs: 1}
	writer := testWriter(t, stub, 0.10)

	err := writer.Commit(context.Background(), inventoryMutations(writer, 20))

	require.NoError(t, err)
	assert.Equal(t, 1, stub.refreshCalls, "tolerated batch still refreshes")
}

func TestCommitFailsAtToleranceThreshold(t *testing.T) {
	// 2 of 20 documents failing is exactly 10%, which is not below the
	// tolerance and fails the whole batch.
	stub := &bulkStub{failDocs: 2}
	writer := testWriter(t, stub, 0.10)

	err := writer.Commit(context.Background(), inventoryMutations(writer, 20))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 20")
	assert.Zero(t, stub.refreshCalls, "failed batch is not refreshed")
}

func TestCommitEmptyIsNoop(t *testing.T) {
	stub := &bulkStub{}
	writer := testWriter(t, stub, 0.10)

	require.NoError(t, writer.Commit(context.Background(), nil))
	assert.Zero(t, stub.bulkCalls)
}

func TestMutationIdentity(t *testing.T) {
	writer := NewWriter(nil, testIndices(), 0.10, nil)

	rec := &models.InventoryRecord{InventoryID: "inv_042", StoreID: "store_001"}
	mut := writer.InventoryDoc(rec)

	assert.Equal(t, "inventory", mut.Index)
	assert.Equal(t, "inv_042", mut.ID, "inventory documents are keyed by inventory id, not store id")

	acct := &models.CustomerAccount{CustomerID: "mike001"}
	assert.Equal(t, "mike001", writer.CustomerDoc(acct).ID)

	txn := &models.Transaction{TransactionID: "txn_9"}
	assert.Equal(t, "txn_9", writer.TransactionDoc(txn).ID)
}

func TestDocumentFor(t *testing.T) {
	writer := NewWriter(nil, testIndices(), 0.10, nil)

	mut, err := writer.DocumentFor(es.KindInventory, map[string]any{
		"inventory_id": "inv_007",
		"store_id":     "store_001",
	})
	require.NoError(t, err)
	assert.Equal(t, "inventory", mut.Index)
	assert.Equal(t, "inv_007", mut.ID)

	_, err = writer.DocumentFor("weather", map[string]any{"id": "x"})
	assert.Error(t, err)
}
