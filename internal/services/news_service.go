package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
)

const newsDefaultLimit = 6

// googleRSSRegions maps simple region codes to Google News RSS params
// (hl, gl, ceid). Unknown regions fall back to us.
var googleRSSRegions = map[string][3]string{
	"us": {"en-US", "US", "US:en"},
	"in": {"en-IN", "IN", "IN:en"},
	"uk": {"en-GB", "GB", "GB:en"},
	"au": {"en-AU", "AU", "AU:en"},
	"ca": {"en-CA", "CA", "CA:en"},
	"sg": {"en-SG", "SG", "SG:en"},
	"de": {"de-DE", "DE", "DE:de"},
	"fr": {"fr-FR", "FR", "FR:fr"},
	"es": {"es-ES", "ES", "ES:es"},
}

type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		URLToImage  string `json:"urlToImage"`
	} `json:"articles"`
}

type cacheEntry struct {
	at      time.Time
	payload dto.NewsResponse
}

// newsProvider is one source in the fallback chain. Failures are contained
// per provider; the chain moves on to the next one.
type newsProvider struct {
	name      string
	available func() bool
	fetch     func(ctx context.Context, region string, limit int) ([]dto.NewsItem, error)
}

// NewsService aggregates headlines from NewsAPI, Google News RSS and the
// NYT feed, with a small TTL response cache. It never returns an error to
// callers: when every source fails the payload is an empty list tagged
// source "error".
type NewsService struct {
	client *resty.Client
	parser *gofeed.Parser
	apiKey string
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry

	// overridable for tests
	newsAPIURL string
	nytRSSURL  string
	googleRSS  func(region string) string
}

func NewNewsService(cfg *config.Config) *NewsService {
	ttl := cfg.NewsTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NewsService{
		client:     resty.New().SetTimeout(10 * time.Second),
		parser:     gofeed.NewParser(),
		apiKey:     cfg.NewsAPIKey,
		ttl:        ttl,
		cache:      make(map[string]cacheEntry),
		newsAPIURL: "https://newsapi.org/v2/top-headlines",
		nytRSSURL:  "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
		googleRSS:  googleNewsRSSURL,
	}
}

func googleNewsRSSURL(region string) string {
	params, ok := googleRSSRegions[region]
	if !ok {
		params = googleRSSRegions["us"]
	}
	return fmt.Sprintf("https://news.google.com/rss?hl=%s&gl=%s&ceid=%s", params[0], params[1], params[2])
}

// FetchHeadlines resolves the provider chain for (region, limit, provider).
// provider is one of auto, newsapi, google_rss, nyt.
func (s *NewsService) FetchHeadlines(ctx context.Context, region string, limit int, provider string) dto.NewsResponse {
	if limit < 1 || limit > 20 {
		limit = newsDefaultLimit
	}

	key := fmt.Sprintf("%s:%d:%s", region, limit, provider)
	if payload, ok := s.getCache(key); ok {
		return payload
	}

	chain := s.chainFor(provider)
	for _, p := range chain {
		if p.available != nil && !p.available() {
			slog.Warn("news provider unavailable, falling back", "provider", p.name)
			continue
		}
		items, err := p.fetch(ctx, region, limit)
		if err != nil {
			slog.Warn("news provider failed", "provider", p.name, "error", err)
			continue
		}
		payload := dto.NewsResponse{News: items, Source: p.name, Region: region}
		s.setCache(key, payload)
		return payload
	}

	empty := dto.NewsResponse{News: []dto.NewsItem{}, Source: "error", Region: region}
	s.setCache(key, empty)
	return empty
}

func (s *NewsService) chainFor(provider string) []newsProvider {
	newsapi := newsProvider{
		name:      "newsapi",
		available: func() bool { return s.apiKey != "" },
		fetch:     s.fetchNewsAPI,
	}
	google := newsProvider{
		name: "google_rss",
		fetch: func(ctx context.Context, region string, limit int) ([]dto.NewsItem, error) {
			return s.fetchRSS(ctx, s.googleRSS(region), limit)
		},
	}
	nyt := newsProvider{
		name: "nyt",
		fetch: func(ctx context.Context, region string, limit int) ([]dto.NewsItem, error) {
			return s.fetchRSS(ctx, s.nytRSSURL, limit)
		},
	}

	switch provider {
	case "newsapi":
		// explicit provider without a key still falls back
		return []newsProvider{newsapi, google, nyt}
	case "google_rss":
		return []newsProvider{google}
	case "nyt":
		return []newsProvider{nyt}
	default:
		return []newsProvider{newsapi, google, nyt}
	}
}

func (s *NewsService) fetchNewsAPI(ctx context.Context, region string, limit int) ([]dto.NewsItem, error) {
	country := "us"
	if _, ok := googleRSSRegions[region]; ok {
		country = region
	}

	var body newsAPIResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"country":  country,
			"pageSize": fmt.Sprintf("%d", limit),
			"apiKey":   s.apiKey,
		}).
		SetResult(&body).
		Get(s.newsAPIURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, errors.New("newsapi: status " + resp.Status())
	}

	items := make([]dto.NewsItem, 0, limit)
	for _, a := range body.Articles {
		if len(items) >= limit {
			break
		}
		title := a.Title
		if title == "" {
			title = "Untitled"
		}
		items = append(items, dto.NewsItem{
			Title:     title,
			Link:      a.URL,
			Published: a.PublishedAt,
			Image:     a.URLToImage,
		})
	}
	return items, nil
}

func (s *NewsService) fetchRSS(ctx context.Context, url string, limit int) ([]dto.NewsItem, error) {
	feed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NewsItem, 0, limit)
	for _, e := range feed.Items {
		if len(items) >= limit {
			break
		}
		title := e.Title
		if title == "" {
			title = "Untitled"
		}
		published := e.Published
		if published == "" {
			published = e.Updated
		}
		items = append(items, dto.NewsItem{
			Title:     title,
			Link:      e.Link,
			Published: published,
			Image:     extractImage(e),
		})
	}
	return items, nil
}

func extractImage(e *gofeed.Item) string {
	if e.Image != nil && e.Image.URL != "" {
		return e.Image.URL
	}
	for _, enc := range e.Enclosures {
		if enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := e.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if url, ok := ext.Attrs["url"]; ok && url != "" {
				return url
			}
		}
		for _, ext := range media["thumbnail"] {
			if url, ok := ext.Attrs["url"]; ok && url != "" {
				return url
			}
		}
	}
	return ""
}

func (s *NewsService) getCache(key string) (dto.NewsResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok {
		return dto.NewsResponse{}, false
	}
	if time.Since(entry.at) > s.ttl {
		delete(s.cache, key)
		return dto.NewsResponse{}, false
	}
	return entry.payload, true
}

func (s *NewsService) setCache(key string, payload dto.NewsResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cacheEntry{at: time.Now(), payload: payload}
}
