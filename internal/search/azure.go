package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/models"
)

// AzureClient talks to an Azure AI Search service over its REST API.
type AzureClient struct {
	client     *resty.Client
	apiVersion string
	queryType  string
	logger     *zap.Logger
}

// AzureOption configures an AzureClient.
type AzureOption func(*AzureClient)

// WithAzureLogger sets a logger for request debug output.
func WithAzureLogger(l *zap.Logger) AzureOption {
	return func(c *AzureClient) {
		c.logger = l
	}
}

// WithQueryType overrides the search query type (default "simple").
func WithQueryType(t string) AzureOption {
	return func(c *AzureClient) {
		if t != "" {
			c.queryType = t
		}
	}
}

// NewAzureClient returns a client for endpoint authenticating with apiKey.
func NewAzureClient(endpoint, apiKey, apiVersion string, timeout time.Duration, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(endpoint, "/")).
			SetTimeout(timeout).
			SetHeader("api-key", apiKey).
			SetHeader("Content-Type", "application/json"),
		apiVersion: apiVersion,
		queryType:  "simple",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchRequest struct {
	Search    string `json:"search"`
	Top       int    `json:"top"`
	QueryType string `json:"queryType"`
}

type searchResponse struct {
	Value []models.RetrievedDocument `json:"value"`
}

type indexResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

type indexResponse struct {
	Value []indexResult `json:"value"`
}

// Search posts a simple full-text query to the index's docs/search endpoint.
func (c *AzureClient) Search(ctx context.Context, index, query string, top int) ([]models.RetrievedDocument, error) {
	var out searchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("api-version", c.apiVersion).
		SetBody(searchRequest{Search: query, Top: top, QueryType: c.queryType}).
		SetResult(&out).
		Post(indexPath(index, "docs/search"))
	if err != nil {
		return nil, fmt.Errorf("search request to %s failed: %w", index, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search %s returned %d: %s", index, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if c.logger != nil {
		c.logger.Debug("search completed",
			zap.String("index", index),
			zap.Int("hits", len(out.Value)),
			zap.Duration("took", resp.Time()))
	}
	return out.Value, nil
}

// Upload indexes one document with the "upload" action, which inserts or replaces by key.
func (c *AzureClient) Upload(ctx context.Context, index string, doc *models.RetrievedDocument) error {
	action := map[string]any{
		"@search.action":        "upload",
		"id":                    doc.ID,
		"Demographics":          doc.Demographics,
		"QuestionsAndResponses": doc.QuestionsAndResponses,
	}
	if v, ok := doc.Content.Get(); ok {
		action["content"] = v
	}

	var out indexResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("api-version", c.apiVersion).
		SetBody(map[string]any{"value": []any{action}}).
		SetResult(&out).
		Post(indexPath(index, "docs/index"))
	if err != nil {
		return fmt.Errorf("upload to %s failed: %w", index, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload to %s returned %d: %s", index, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	for _, r := range out.Value {
		if !r.Status {
			return fmt.Errorf("document %s rejected by %s: %s", r.Key, index, r.ErrorMessage)
		}
	}
	return nil
}

// Count returns the document count reported by docs/$count.
func (c *AzureClient) Count(ctx context.Context, index string) (int64, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("api-version", c.apiVersion).
		Get(indexPath(index, "docs/$count"))
	if err != nil {
		return 0, fmt.Errorf("count request to %s failed: %w", index, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("count %s returned %d", index, resp.StatusCode())
	}
	body := strings.TrimPrefix(strings.TrimSpace(resp.String()), "\ufeff")
	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected count body %q: %w", body, err)
	}
	return n, nil
}

func indexPath(index, suffix string) string {
	return "/indexes/" + url.PathEscape(index) + "/" + suffix
}
