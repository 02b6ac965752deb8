package elastic

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Entity kinds with a dedicated document-id priority list.
const (
	KindCustomers    = "customers"
	KindTransactions = "transactions"
	KindInventory    = "inventory"
	KindStores       = "stores"
	KindMenu         = "menu"
)

// idPriorities maps each entity kind to the fields tried, in order, when
// deriving a document id. The kind-specific field always comes before the
// generic "id" so that, for example, an inventory document is never keyed by
// a secondary field like store_id.
var idPriorities = map[string][]string{
	KindInventory:    {"inventory_id", "id"},
	KindCustomers:    {"customer_id", "id"},
	KindTransactions: {"transaction_id", "id"},
	KindStores:       {"store_id", "id"},
	KindMenu:         {"item_id", "id"},
}

var defaultIDPriority = []string{
	"id", "item_id", "customer_id", "transaction_id", "inventory_id", "store_id",
}

// DeriveDocumentID picks a document id for an untyped document: the kind's
// priority fields first, then any non-empty field ending in "_id", and
// finally a freshly generated identifier.
func DeriveDocumentID(kind string, doc map[string]any) string {
	priority, ok := idPriorities[kind]
	if !ok {
		priority = defaultIDPriority
	}

	for _, field := range priority {
		if id := stringField(doc, field); id != "" {
			return id
		}
	}

	for key, value := range doc {
		if !strings.HasSuffix(key, "_id") {
			continue
		}
		if id := toID(value); id != "" {
			return id
		}
	}

	return uuid.NewString()
}

func stringField(doc map[string]any, field string) string {
	value, ok := doc[field]
	if !ok {
		return ""
	}
	return toID(value)
}

func toID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	default:
		return ""
	}
}
