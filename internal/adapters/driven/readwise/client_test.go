package readwise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
}

func writePage(w http.ResponseWriter, cursor string, sources ...sourcePayload) {
	resp := exportResponse{
		Count:          len(sources),
		NextPageCursor: cursor,
		Results:        sources,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func testSource(id int64, title string, highlightIDs ...int64) sourcePayload {
	src := sourcePayload{
		UserBookID: id,
		Title:      title,
		Author:     "Author",
		Category:   "books",
		BookTags:   []tagPayload{{ID: 1, Name: "tag"}},
	}
	for _, hid := range highlightIDs {
		src.Highlights = append(src.Highlights, highlightPayload{
			ID:            hid,
			Text:          fmt.Sprintf("highlight %d", hid),
			HighlightedAt: "2024-03-01T10:00:00Z",
		})
	}
	return src
}

func TestClient_FetchAll_Paginates(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/export/", r.URL.Path)

		switch r.URL.Query().Get("pageCursor") {
		case "":
			writePage(w, "cursor-2", testSource(1, "Book One", 11))
		case "cursor-2":
			writePage(w, "", testSource(2, "Book Two", 21, 22))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("pageCursor"))
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	sources, err := client.FetchAll(context.Background(), "secret")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	require.Len(t, sources, 2)
	assert.Equal(t, "Book One", sources[0].Title)
	assert.Equal(t, int64(1), sources[0].ID)
	require.Len(t, sources[1].Highlights, 2)
	assert.Equal(t, int64(2), sources[1].Highlights[0].SourceID)
}

func TestClient_FetchAll_RetriesSamePageOn429(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n == 1 {
			w.Header().Set(HeaderRetryAfter, "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writePage(w, "", testSource(1, "Book", 11))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	sources, err := client.FetchAll(context.Background(), "secret")
	require.NoError(t, err)

	// The throttled page was refetched, nothing was lost.
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	require.Len(t, sources, 1)
	require.Len(t, sources[0].Highlights, 1)
}

func TestClient_FetchAll_RateLimitRetriesExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchAll(context.Background(), "secret")

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestClient_FetchAll_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"Invalid token."}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchAll(context.Background(), "bad-token")

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "invalid or expired token")
	assert.Contains(t, err.Error(), "401")
}

func TestClient_FetchAll_MissingToken(t *testing.T) {
	client := newTestClient("http://localhost:0")
	_, err := client.FetchAll(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "missing API token")
}

func TestClient_FetchAll_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL)
	_, err := client.FetchAll(ctx, "secret")

	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestClient_Validate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writePage(w, "", testSource(1, "Book", 11))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	assert.NoError(t, client.Validate(context.Background(), "secret"))
	assert.Error(t, client.Validate(context.Background(), ""))
}

func TestRetryAfter_HeaderParsing(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	resp.Header.Set(HeaderRetryAfter, "12")
	assert.Equal(t, 12*time.Second, retryAfter(resp))

	resp.Header.Set(HeaderRetryAfter, "not-a-number")
	assert.Equal(t, DefaultRetryAfter, retryAfter(resp))

	resp.Header.Del(HeaderRetryAfter)
	assert.Equal(t, DefaultRetryAfter, retryAfter(resp))
}

func TestParseTimestamp_Formats(t *testing.T) {
	got := parseTimestamp("2024-03-01T10:00:00Z")
	assert.Equal(t, 2024, got.Year())

	// Readwise sometimes omits the offset.
	got = parseTimestamp("2024-03-01T10:00:00.123456")
	assert.Equal(t, time.March, got.Month())

	got = parseTimestamp("2024-03-01T10:00:00")
	assert.Equal(t, 1, got.Day())

	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("garbage").IsZero())
}

func TestErrorHelpers(t *testing.T) {
	rle := &RateLimitError{RetryAfter: time.Minute}
	assert.True(t, IsRateLimited(fmt.Errorf("wrapped: %w", rle)))
	assert.False(t, IsRateLimited(fmt.Errorf("plain")))

	unauthorized := &APIError{StatusCode: 401, Message: "nope"}
	assert.True(t, IsUnauthorized(fmt.Errorf("wrapped: %w", unauthorized)))
	forbidden := &APIError{StatusCode: 403}
	assert.True(t, IsUnauthorized(forbidden))
	server := &APIError{StatusCode: 500}
	assert.False(t, IsUnauthorized(server))
}
