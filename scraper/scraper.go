// Package scraper fetches catalog pages over HTTP and hands their HTML to
// the extraction pipelines.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/goodreads-scraper/config"
)

// Scraper wraps the colly collector with retries, error classification, and
// metrics. One instance serves concurrent page fetches.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	errorCount   int64
	retryCount   int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int
}

// fetchResult travels back from the collector callbacks to the caller that
// issued the request.
type fetchResult struct {
	html   string
	status int
	err    error
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.Async(true),
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	// Retries re-request the same URL, so the visited-URL check must be off.
	collector.AllowURLRevisit = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	s := &Scraper{
		cfg:          cfg,
		collector:    collector,
		errorsByType: make(map[string]int),
		Metrics:      NewMetrics(),
	}
	s.registerHandlers()
	return s, nil
}

// BookPage fetches the detail page for one book id and returns its HTML.
func (s *Scraper) BookPage(ctx context.Context, id string) (string, error) {
	u := fmt.Sprintf("%s/book/show/%s", strings.TrimSuffix(s.cfg.BaseURL, "/"), url.PathEscape(id))
	html, err := s.fetch(ctx, u)
	if err != nil {
		return "", fmt.Errorf("book page %s: %w", id, err)
	}
	return html, nil
}

// SearchPage fetches one results page for the query. The field selector
// narrows the search to title or author matches; "all" and "" search
// everything. Pages are numbered from 1.
func (s *Scraper) SearchPage(ctx context.Context, query, field string, page int) (string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("search_type", "books")
	switch field {
	case "", "all":
	case "title", "author":
		params.Set("search[field]", field)
	default:
		return "", fmt.Errorf("invalid search field %q", field)
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	u := fmt.Sprintf("%s/search?%s", strings.TrimSuffix(s.cfg.BaseURL, "/"), params.Encode())
	html, err := s.fetch(ctx, u)
	if err != nil {
		return "", fmt.Errorf("search page %q: %w", query, err)
	}
	return html, nil
}

// Wait blocks until the collector has no requests in flight.
func (s *Scraper) Wait() {
	s.collector.Wait()
}

// fetch requests a URL, retrying transient failures with exponential backoff
// until the attempt budget runs out or the context is done.
func (s *Scraper) fetch(ctx context.Context, u string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			atomic.AddInt64(&s.retryCount, 1)
			s.Metrics.IncRetries()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}

		html, status, err := s.fetchOnce(ctx, u)
		if err == nil {
			return html, nil
		}
		lastErr = err
		if !retryable(err, status) {
			break
		}
		slog.Debug("retrying request",
			slog.String("url", u),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}

	s.recordFailure(u)
	return "", lastErr
}

// fetchOnce issues a single request and waits for the collector callbacks to
// reply. The reply channel rides in the request context; its buffer keeps a
// late callback from blocking after the caller gave up.
func (s *Scraper) fetchOnce(ctx context.Context, u string) (string, int, error) {
	reply := make(chan fetchResult, 1)
	cctx := colly.NewContext()
	cctx.Put("reply", reply)

	if err := s.collector.Request(http.MethodGet, u, nil, cctx, nil); err != nil {
		return "", 0, fmt.Errorf("issue request: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", 0, ctx.Err()
	case res := <-reply:
		if res.err != nil {
			return "", res.status, res.err
		}
		return res.html, res.status, nil
	}
}

func (s *Scraper) registerHandlers() {
	s.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		current := atomic.AddInt64(&s.requestCount, 1)
		s.Metrics.IncRequest("started")
		if current%50 == 0 {
			slog.Debug("scraper request progress",
				slog.Int64("requests", current),
				slog.String("url", r.URL.String()),
			)
		}
	})

	s.collector.OnResponse(func(r *colly.Response) {
		s.Metrics.IncRequest("completed")
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
		if reply, ok := r.Request.Ctx.GetAny("reply").(chan fetchResult); ok {
			reply <- fetchResult{html: string(r.Body), status: r.StatusCode}
		}
	})

	s.collector.OnError(func(r *colly.Response, err error) {
		atomic.AddInt64(&s.errorCount, 1)
		statusCode := 0
		requestURL := ""
		var cctx *colly.Context
		if r != nil {
			statusCode = r.StatusCode
			if r.Request != nil {
				cctx = r.Request.Ctx
				if r.Request.URL != nil {
					requestURL = r.Request.URL.String()
				}
			}
		}

		classified := classifyError(err, statusCode)
		category := errorTypeLabel(classified)

		s.mu.Lock()
		s.errorsByType[category]++
		s.mu.Unlock()

		slog.Error("request error",
			slog.String("url", requestURL),
			slog.String("category", category),
			slog.Any("error", err),
		)
		s.Metrics.IncRequest("failed")
		s.Metrics.IncError(category)

		if cctx != nil {
			if reply, ok := cctx.GetAny("reply").(chan fetchResult); ok {
				reply <- fetchResult{status: statusCode, err: classified}
			}
		}
	})
}

func (s *Scraper) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := s.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := s.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

func (s *Scraper) recordFailure(u string) {
	s.mu.Lock()
	s.failedURLs = append(s.failedURLs, u)
	s.mu.Unlock()
}

// RequestCount reports how many requests the collector issued.
func (s *Scraper) RequestCount() int {
	return int(atomic.LoadInt64(&s.requestCount))
}

// ErrorCount reports how many requests ended in an error callback.
func (s *Scraper) ErrorCount() int {
	return int(atomic.LoadInt64(&s.errorCount))
}

// RetryCount reports how many retry attempts were made.
func (s *Scraper) RetryCount() int {
	return int(atomic.LoadInt64(&s.retryCount))
}

// FailedURLs returns a copy of the URLs whose attempt budget ran out.
func (s *Scraper) FailedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.failedURLs))
	copy(out, s.failedURLs)
	return out
}

// ErrorsByType returns a copy of the per-category error counts.
func (s *Scraper) ErrorsByType() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		out[k] = v
	}
	return out
}
