package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beeloyalty/engine/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ElasticConfig{
		Endpoint:       srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		BulkTimeout:    5 * time.Second,
	}, nil)
}

func TestGetDocument(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ApiKey test-key", r.Header.Get("Authorization"))
		require.Equal(t, "/customers/_doc/mike001", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"mike001","_source":{"customer_id":"mike001"}}`))
	}))

	source, err := client.GetDocument(context.Background(), "customers", "mike001")

	require.NoError(t, err)
	assert.JSONEq(t, `{"customer_id":"mike001"}`, string(source))
}

func TestGetDocumentNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"found":false}`))
	}))

	_, err := client.GetDocument(context.Background(), "customers", "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkBuildsNDJSONPairs(t *testing.T) {
	var captured string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_bulk", r.URL.Path)
		assert.Equal(t, "application/x-ndjson", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		captured = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":false,"items":[{"index":{"_id":"txn_1","status":201}},{"index":{"_id":"mike001","status":200}}]}`))
	}))

	report, err := client.Bulk(context.Background(), []Mutation{
		{Index: "transactions", ID: "txn_1", Doc: map[string]any{"order_total": 450}},
		{Index: "customers", ID: "mike001", Doc: map[string]any{"customer_id": "mike001"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Zero(t, report.Failed)

	lines := strings.Split(strings.TrimSuffix(captured, "\n"), "\n")
	require.Len(t, lines, 4, "one action line and one document line per mutation")

	var action map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &action))
	assert.Equal(t, "transactions", action["index"]["_index"])
	assert.Equal(t, "txn_1", action["index"]["_id"])
}

func TestBulkCountsItemErrors(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":true,"items":[
			{"index":{"_id":"a","status":201}},
			{"index":{"_id":"b","status":400,"error":{"type":"mapper_parsing_exception"}}},
			{"index":{"_id":"c","status":201}}
		]}`))
	}))

	report, err := client.Bulk(context.Background(), []Mutation{
		{Index: "inventory", ID: "a", Doc: map[string]any{}},
		{Index: "inventory", ID: "b", Doc: map[string]any{}},
		{Index: "inventory", ID: "c", Doc: map[string]any{}},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, report.Documents)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.ItemErrors, 1)
	assert.Contains(t, report.ItemErrors[0], "mapper_parsing_exception")
}

func TestBulkEmptyIsNoop(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty mutation set")
	}))

	report, err := client.Bulk(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, report.Documents)
}

func TestRefreshJoinsIndices(t *testing.T) {
	var path string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_shards":{"failed":0}}`))
	}))

	require.NoError(t, client.Refresh(context.Background(), "transactions", "customers"))
	assert.Equal(t, "/transactions,customers/_refresh", path)
}

func TestHealthCheck(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_cluster/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"green","cluster_name":"loyalty-es"}`))
	}))

	health, err := client.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "green", health.Status)
	assert.Equal(t, "loyalty-es", health.ClusterName)
}
