package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/httpx"
)

type Options struct {
	BaseURL           string
	APIKey            string
	Version           string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the Notion REST API. It is safe for concurrent use; all
// requests share one rate limiter.
type Client struct {
	baseURL string
	apiKey  string
	version string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: maxDuration(opts.Timeout, 10*time.Second)}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		apiKey:  strings.TrimSpace(opts.APIKey),
		version: strings.TrimSpace(opts.Version),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// QueryDatabase returns the first page of rows matching q. Pagination is not
// followed; callers see HasMore when rows were left behind.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) (QueryResult, error) {
	id := strings.TrimSpace(databaseID)
	if id == "" {
		return QueryResult{}, fmt.Errorf("database id is required")
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	body, err := httpx.EncodeJSON(q)
	if err != nil {
		return QueryResult{}, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return QueryResult{}, fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/databases/%s/query", c.baseURL, url.PathEscape(id))
	result, err := httpx.DoJSON[QueryResult](ctx, c.http, http.MethodPost, endpoint, c.headers(), body)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query database %s: %w", id, asAPIError(err))
	}
	return result, nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Notion-Version": c.version,
	}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	return headers
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
