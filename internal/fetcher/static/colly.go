// Package static implements the fast-path fetcher using gocolly.
package static

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// Config controls collector behavior.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements watch.Fetcher with a plain HTTP GET via Colly. It
// returns whatever the server sends without executing JavaScript; the
// detector decides whether that markup is usable.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) (*Fetcher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = false
	// The same URL is fetched every cycle; the visited-set must not
	// swallow repeat visits.
	c.AllowURLRevisit = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}, nil
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context) (watch.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return watch.FetchResult{}, watch.NewFetchError(f.cfg.URL, err)
	}

	var (
		result   watch.FetchResult
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	collector.OnResponse(func(r *colly.Response) {
		result = watch.FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       r.Body,
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(f.cfg.URL); err != nil {
		return watch.FetchResult{}, watch.NewFetchError(f.cfg.URL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return watch.FetchResult{}, watch.NewFetchError(f.cfg.URL, fetchErr)
	}
	if result.StatusCode == 0 {
		return watch.FetchResult{}, watch.NewFetchError(f.cfg.URL, fmt.Errorf("no response received"))
	}
	return result, nil
}
