package readwise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.ExportClient = (*Client)(nil)

// Default configuration values.
const (
	// DefaultBaseURL is the Readwise v2 API root.
	DefaultBaseURL = "https://readwise.io/api/v2"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryAfter is the wait applied to a 429 response that
	// carries no Retry-After header.
	DefaultRetryAfter = 60 * time.Second

	// DefaultMaxRetries bounds 429 retries per page so the backoff
	// loop cannot block forever.
	DefaultMaxRetries = 5

	// ProactiveRate throttles requests below the documented
	// 240/minute quota.
	ProactiveRate = 2.0
)

// HeaderRetryAfter is the retry-after header (seconds).
const HeaderRetryAfter = "Retry-After"

// Config holds configuration for the Readwise export client.
type Config struct {
	// BaseURL is the API root (default: https://readwise.io/api/v2).
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// MaxRetries bounds 429 retries per page (default: 5).
	MaxRetries int
}

// Client fetches the full highlight archive from the Readwise export
// endpoint.
type Client struct {
	client     *http.Client
	baseURL    string
	maxRetries int
	bucket     *rate.Limiter
}

// NewClient creates a new export client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &Client{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		bucket:     rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// FetchAll pages through /export/ until the server stops returning a
// continuation cursor. A 429 pauses for the server-indicated interval
// and retries the same page; any other failure aborts the fetch and
// discards pages already retrieved.
func (c *Client) FetchAll(ctx context.Context, token string) ([]domain.SourceRecord, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, ErrMissingToken)
	}

	logger.Section("Readwise Export")

	var sources []domain.SourceRecord
	cursor := ""
	pages := 0

	for {
		page, err := c.fetchPage(ctx, token, cursor)
		if err != nil {
			return nil, err
		}
		pages++

		for _, p := range page.Results {
			sources = append(sources, p.toDomain())
		}
		logger.Debug("Page %d: %d sources (total %d)", pages, len(page.Results), len(sources))

		if page.NextPageCursor == "" {
			break
		}
		cursor = page.NextPageCursor
	}

	logger.Info("Fetched %d sources over %d pages", len(sources), pages)
	return sources, nil
}

// Validate makes a single authenticated request to verify the token.
func (c *Client) Validate(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, ErrMissingToken)
	}
	_, err := c.fetchPage(ctx, token, "")
	return err
}

// fetchPage retrieves one export page, retrying the same page on 429
// until maxRetries is exhausted.
func (c *Client) fetchPage(ctx context.Context, token, cursor string) (*exportResponse, error) {
	retries := 0
	for {
		page, err := c.doRequest(ctx, token, cursor)
		if err == nil {
			return page, nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			if IsUnauthorized(err) {
				return nil, fmt.Errorf("%w: invalid or expired token: %v", domain.ErrFetchFailed, err)
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
		}

		if retries >= c.maxRetries {
			return nil, fmt.Errorf("%w: %w after %d retries",
				domain.ErrFetchFailed, domain.ErrRateLimited, retries)
		}
		retries++

		logger.Warn("Rate limit hit, waiting %s before retrying page (attempt %d/%d)",
			rle.RetryAfter, retries, c.maxRetries)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, ctx.Err())
		case <-time.After(rle.RetryAfter):
		}
	}
}

// doRequest performs a single export request for the given cursor.
func (c *Client) doRequest(ctx context.Context, token, cursor string) (*exportResponse, error) {
	if err := c.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + "/export/"
	if cursor != "" {
		endpoint += "?" + url.Values{"pageCursor": {cursor}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: retryAfter(resp)}
	}

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := "failed to read response"
		if readErr == nil {
			msg = string(body)
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    msg,
			URL:        endpoint,
		}
	}

	var page exportResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &page, nil
}

// retryAfter reads the Retry-After header, falling back to the default
// interval when absent or malformed.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return DefaultRetryAfter
}
