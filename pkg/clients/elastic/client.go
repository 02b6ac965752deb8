package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/config"
)

// ErrNotFound is returned when a document id does not exist in an index.
var ErrNotFound = errors.New("document not found")

// Client wraps the document store's HTTP API with typed operations.
type Client struct {
	http   *resty.Client
	bulk   *resty.Client
	logger *zap.Logger
}

// NewClient builds a document-store client using the provided configuration values.
func NewClient(cfg config.ElasticConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimSuffix(cfg.Endpoint, "/")
	auth := fmt.Sprintf("ApiKey %s", cfg.APIKey)

	httpClient := resty.New().
		SetBaseURL(base).
		SetHeader("Authorization", auth).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.RequestTimeout)

	// Bulk submissions carry many documents and get a longer deadline.
	bulkClient := resty.New().
		SetBaseURL(base).
		SetHeader("Authorization", auth).
		SetHeader("Content-Type", "application/x-ndjson").
		SetTimeout(cfg.BulkTimeout)

	return &Client{http: httpClient, bulk: bulkClient, logger: logger}
}

// ClusterHealth mirrors the health endpoint's response fields we consume.
type ClusterHealth struct {
	Status      string `json:"status"`
	ClusterName string `json:"cluster_name"`
}

// HealthCheck probes the cluster health endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*ClusterHealth, error) {
	health := new(ClusterHealth)

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(health).
		Get("/_cluster/health")
	if err != nil {
		return nil, fmt.Errorf("cluster health: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cluster health: unexpected status %d", resp.StatusCode())
	}

	c.logger.Info("cluster health", zap.String("status", health.Status))
	return health, nil
}

type getDocumentResponse struct {
	Source json.RawMessage `json:"_source"`
}

// GetDocument fetches one document's source by id. Returns ErrNotFound when
// the index has no document with that id.
func (c *Client) GetDocument(ctx context.Context, index, id string) (json.RawMessage, error) {
	doc := new(getDocumentResponse)

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(doc).
		Get(fmt.Sprintf("/%s/_doc/%s", index, id))
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", index, id, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return doc.Source, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("get document %s/%s: unexpected status %d", index, id, resp.StatusCode())
	}
}

// Hit is one search result entry.
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// SearchResult carries the hits and aggregations of a search response.
type SearchResult struct {
	Hits struct {
		Hits []Hit `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Search runs a query or aggregation against one index.
func (c *Client) Search(ctx context.Context, index string, query any) (*SearchResult, error) {
	result := new(SearchResult)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(query).
		SetResult(result).
		Post(fmt.Sprintf("/%s/_search", index))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search %s: unexpected status %d", index, resp.StatusCode())
	}

	return result, nil
}

// SemanticSearch runs a text-expansion query against one index. Relevance is
// entirely the store's concern; callers only see ranked hits.
func (c *Client) SemanticSearch(ctx context.Context, index, modelID, text string, size int, sourceFields []string) (*SearchResult, error) {
	query := map[string]any{
		"query": map[string]any{
			"text_expansion": map[string]any{
				"ml.tokens": map[string]any{
					"model_id":   modelID,
					"model_text": text,
				},
			},
		},
		"size": size,
	}
	if len(sourceFields) > 0 {
		query["_source"] = sourceFields
	}

	return c.Search(ctx, index, query)
}

// Mutation is one full-document write destined for a bulk submission.
// Construct values through the per-kind helpers in the write coordinator so
// each document is keyed by its own identifier.
type Mutation struct {
	Index string
	ID    string
	Doc   any
}

// BulkReport summarizes the per-item outcome of a bulk submission.
type BulkReport struct {
	Documents  int
	Failed     int
	ItemErrors []string
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"items"`
}

// Bulk commits all mutations in one newline-delimited submission and reports
// per-document failures. Transport errors and non-200 responses fail the
// whole call; per-item errors are left for the caller's tolerance policy.
func (c *Client) Bulk(ctx context.Context, mutations []Mutation) (*BulkReport, error) {
	if len(mutations) == 0 {
		return &BulkReport{}, nil
	}

	var body bytes.Buffer
	for _, m := range mutations {
		action, err := json.Marshal(map[string]any{
			"index": map[string]any{"_index": m.Index, "_id": m.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("marshal bulk action: %w", err)
		}
		doc, err := json.Marshal(m.Doc)
		if err != nil {
			return nil, fmt.Errorf("marshal bulk document %s/%s: %w", m.Index, m.ID, err)
		}
		body.Write(action)
		body.WriteByte('\n')
		body.Write(doc)
		body.WriteByte('\n')
	}

	result := new(bulkResponse)

	resp, err := c.bulk.R().
		SetContext(ctx).
		SetBody(body.Bytes()).
		SetResult(result).
		Post("/_bulk")
	if err != nil {
		return nil, fmt.Errorf("bulk write: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("bulk write: unexpected status %d", resp.StatusCode())
	}

	report := &BulkReport{Documents: len(mutations)}
	for _, item := range result.Items {
		for _, outcome := range item {
			if len(outcome.Error) > 0 {
				report.Failed++
				report.ItemErrors = append(report.ItemErrors, string(outcome.Error))
			}
		}
	}

	return report, nil
}

// Refresh forces the given indices to make just-written documents visible to
// subsequent reads.
func (c *Client) Refresh(ctx context.Context, indices ...string) error {
	if len(indices) == 0 {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/%s/_refresh", strings.Join(indices, ",")))
	if err != nil {
		return fmt.Errorf("refresh indices: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("refresh indices: unexpected status %d", resp.StatusCode())
	}

	c.logger.Debug("refreshed indices", zap.Strings("indices", indices))
	return nil
}
