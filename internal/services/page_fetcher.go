package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pogo-parser/backend/internal/metrics"
)

const (
	pageFetchTimeout  = 15 * time.Second
	maxPageBytes      = 4 * 1024 * 1024
	defaultFetchRate  = 1.0
	defaultFetchBurst = 2
	defaultPageCache  = 64
	pageUserAgent     = "pogo-parser/1.0 (+event page reader)"
)

// PageFetcherConfig tunes outbound page fetches
type PageFetcherConfig struct {
	RatePerSecond float64
	Burst         int
	CacheSize     int
	Client        *http.Client
}

// PageFetcher downloads fan-site pages politely: requests are rate limited and
// bodies are cached by URL
type PageFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cache   *lru.Cache[string, []byte] // url -> body
}

func NewPageFetcher(cfg PageFetcherConfig) *PageFetcher {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultFetchRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultFetchBurst
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultPageCache
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: pageFetchTimeout}
	}

	cache, err := lru.New[string, []byte](cfg.CacheSize)
	if err != nil {
		log.Printf("[PageFetcher] Failed to create page cache: %v", err)
	}

	return &PageFetcher{
		client:  cfg.Client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		cache:   cache,
	}
}

// Fetch returns the body of url, from cache when available
func (f *PageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			metrics.FetchCacheHits.Inc()
			return body, nil
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	body, err := f.get(ctx, url)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.FetchRequestsTotal.WithLabelValues("ok").Inc()
	if f.cache != nil {
		f.cache.Add(url, body)
	}
	return body, nil
}

func (f *PageFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", pageUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchRequestsTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		metrics.FetchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// Forget drops a cached page so the next Fetch goes to the network
func (f *PageFetcher) Forget(url string) {
	if f.cache != nil {
		f.cache.Remove(url)
	}
}
