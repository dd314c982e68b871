package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<item><title>First headline</title><link>https://example.com/1</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
<item><title>Second headline</title><link>https://example.com/2</link><pubDate>Mon, 02 Jan 2006 16:04:05 GMT</pubDate></item>
<item><title>Third headline</title><link>https://example.com/3</link><pubDate>Mon, 02 Jan 2006 17:04:05 GMT</pubDate></item>
</channel>
</rss>`

func newTestNewsService(ttl time.Duration) *NewsService {
	return NewNewsService(&config.Config{NewsTTL: ttl})
}

func TestFallbackToGoogleRSSWithoutAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	svc := newTestNewsService(time.Minute)
	svc.googleRSS = func(string) string { return server.URL }

	resp := svc.FetchHeadlines(context.Background(), "us", 2, "auto")
	assert.Equal(t, "google_rss", resp.Source)
	assert.Equal(t, "us", resp.Region)
	require.Len(t, resp.News, 2)
	assert.Equal(t, "First headline", resp.News[0].Title)
	assert.Equal(t, "https://example.com/1", resp.News[0].Link)
}

func TestNewsAPIPreferredWhenKeyPresent(t *testing.T) {
	newsAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"articles":[{"title":"API headline","url":"https://example.com/api","publishedAt":"2026-01-01T00:00:00Z","urlToImage":"https://example.com/img.png"}]}`))
	}))
	defer newsAPI.Close()

	svc := NewNewsService(&config.Config{NewsAPIKey: "test-key", NewsTTL: time.Minute})
	svc.newsAPIURL = newsAPI.URL

	resp := svc.FetchHeadlines(context.Background(), "us", 5, "auto")
	assert.Equal(t, "newsapi", resp.Source)
	require.Len(t, resp.News, 1)
	assert.Equal(t, "API headline", resp.News[0].Title)
	assert.Equal(t, "https://example.com/img.png", resp.News[0].Image)
}

func TestChainSkipsFailingProvider(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer working.Close()

	svc := NewNewsService(&config.Config{NewsAPIKey: "test-key", NewsTTL: time.Minute})
	svc.newsAPIURL = failing.URL
	svc.googleRSS = func(string) string { return working.URL }

	resp := svc.FetchHeadlines(context.Background(), "us", 3, "auto")
	assert.Equal(t, "google_rss", resp.Source)
	assert.Len(t, resp.News, 3)
}

func TestAllProvidersFailingReturnsEmptyList(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer dead.Close()

	svc := newTestNewsService(time.Minute)
	svc.googleRSS = func(string) string { return dead.URL }
	svc.nytRSSURL = dead.URL

	resp := svc.FetchHeadlines(context.Background(), "us", 5, "auto")
	assert.Equal(t, "error", resp.Source)
	assert.NotNil(t, resp.News)
	assert.Empty(t, resp.News)
}

func TestHeadlinesAreCached(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	svc := newTestNewsService(time.Minute)
	svc.googleRSS = func(string) string { return server.URL }

	first := svc.FetchHeadlines(context.Background(), "us", 2, "google_rss")
	second := svc.FetchHeadlines(context.Background(), "us", 2, "google_rss")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	// a different limit is a different cache key
	svc.FetchHeadlines(context.Background(), "us", 3, "google_rss")
	assert.Equal(t, 2, calls)
}

func TestLimitClampedToDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	svc := newTestNewsService(time.Minute)
	svc.googleRSS = func(string) string { return server.URL }

	// the feed only has three items; an out-of-range limit falls back to 6
	resp := svc.FetchHeadlines(context.Background(), "us", 0, "google_rss")
	assert.Len(t, resp.News, 3)
	resp = svc.FetchHeadlines(context.Background(), "us", 100, "google_rss")
	assert.Len(t, resp.News, 3)
}
