package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/k-namiki/grounder/pkg/config"
	"github.com/k-namiki/grounder/pkg/model"
	"github.com/k-namiki/grounder/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

var ErrSearchFailed = goerr.New("search request failed")

// SearchClient issues one query against the retrieval service and returns
// normalized results in the order the service ranked them.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]*model.SearchResult, error)
}

type vertexClient struct {
	cfg        *config.Config
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
}

// VertexOption is a functional option for the Vertex search client
type VertexOption func(*vertexClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) VertexOption {
	return func(v *vertexClient) {
		v.httpClient = c
	}
}

// WithBaseURL overrides the service endpoint. Used for tests.
func WithBaseURL(url string) VertexOption {
	return func(v *vertexClient) {
		v.baseURL = url
	}
}

// NewVertexSearch creates a SearchClient for the Vertex AI Search REST API.
func NewVertexSearch(cfg *config.Config, tokens TokenSource, opts ...VertexOption) SearchClient {
	v := &vertexClient{
		cfg:    cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		baseURL: fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

type searchRequest struct {
	Query    string `json:"query"`
	PageSize int    `json:"pageSize"`
}

type searchResponse struct {
	Results []struct {
		Score    float64 `json:"score"`
		Document struct {
			Title             string         `json:"title"`
			Snippet           string         `json:"snippet"`
			URI               string         `json:"uri"`
			DerivedStructData map[string]any `json:"derivedStructData"`
		} `json:"document"`
	} `json:"results"`
}

func (v *vertexClient) Search(ctx context.Context, query string) ([]*model.SearchResult, error) {
	logger := logging.From(ctx)

	// Token validity is checked on every search, not just the first
	token, err := v.tokens.Token(ctx)
	if err != nil {
		logger.Error("search failed", "query", query, "error", err)
		return nil, goerr.Wrap(err, "failed to get access token", goerr.V("query", query))
	}

	body, err := json.Marshal(searchRequest{
		Query:    query,
		PageSize: v.cfg.MaxResults,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal search request")
	}

	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/dataStores/%s/servingConfigs/default_search:search",
		v.baseURL, v.cfg.ProjectID, v.cfg.Location, v.cfg.SearchEngineID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create search request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		logger.Error("search failed", "query", query, "error", err)
		return nil, goerr.Wrap(err, "failed to send search request", goerr.V("query", query))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("search failed", "query", query, "status", resp.StatusCode)
		return nil, goerr.Wrap(ErrSearchFailed, "search API returned error",
			goerr.V("query", query),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to decode search response", goerr.V("query", query))
	}

	results := make([]*model.SearchResult, 0, len(parsed.Results))
	for _, entry := range parsed.Results {
		results = append(results, model.NewSearchResult(
			entry.Document.Title,
			entry.Document.Snippet,
			entry.Document.URI,
			entry.Score,
			entry.Document.DerivedStructData,
		))
	}

	logger.Info("search completed", "query", query, "result_count", len(results))
	return results, nil
}
