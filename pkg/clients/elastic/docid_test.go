package elastic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDocumentIDInventoryPrefersInventoryID(t *testing.T) {
	doc := map[string]any{
		"inventory_id": "inv_042",
		"store_id":     "store_001",
		"item_name":    "Regular Fries",
	}

	// store_id must never win for inventory documents: keying by store
	// collides across all items of the same store.
	assert.Equal(t, "inv_042", DeriveDocumentID(KindInventory, doc))
}

func TestDeriveDocumentIDPerKindPriority(t *testing.T) {
	tests := []struct {
		kind string
		doc  map[string]any
		want string
	}{
		{KindCustomers, map[string]any{"customer_id": "mike001", "id": "x"}, "mike001"},
		{KindTransactions, map[string]any{"transaction_id": "txn_1"}, "txn_1"},
		{KindStores, map[string]any{"store_id": "store_009"}, "store_009"},
		{KindMenu, map[string]any{"item_id": "menu_77", "store_id": "store_001"}, "menu_77"},
		{KindInventory, map[string]any{"id": "generic_3"}, "generic_3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveDocumentID(tt.kind, tt.doc), "kind %s", tt.kind)
	}
}

func TestDeriveDocumentIDUnknownKindUsesDefaultPriority(t *testing.T) {
	doc := map[string]any{"store_id": "store_001", "id": "abc"}
	assert.Equal(t, "abc", DeriveDocumentID("weather", doc))
}

func TestDeriveDocumentIDSuffixFallback(t *testing.T) {
	doc := map[string]any{"name": "x", "batch_id": "b-12"}
	assert.Equal(t, "b-12", DeriveDocumentID(KindInventory, doc))
}

func TestDeriveDocumentIDNumericValue(t *testing.T) {
	// JSON numbers decode as float64.
	doc := map[string]any{"customer_id": float64(1024)}
	assert.Equal(t, "1024", DeriveDocumentID(KindCustomers, doc))
}

func TestDeriveDocumentIDGeneratesWhenNothingMatches(t *testing.T) {
	id := DeriveDocumentID(KindMenu, map[string]any{"name": "Peach Mango Pie"})

	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "fallback id is a generated identifier")
}
