// Package headless contains fetchers that execute JavaScript via browsers.
package headless

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/ticketwatch/internal/parser"
	"github.com/JakeFAU/ticketwatch/internal/watch"
)

// Config controls the behavior of the headless fetcher.
type Config struct {
	URL               string
	UserAgent         string
	NavigationTimeout time.Duration
}

// Fetcher implements watch.Fetcher using chromedp and headless Chrome.
// The browser allocator lives for the fetcher's lifetime; each Fetch
// opens and tears down its own tab.
type Fetcher struct {
	cfg           Config
	allocator     context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// New creates a headless fetcher backed by chromedp. It warms up the
// browser so a missing Chrome install fails at startup, not mid-cycle.
func New(cfg Config) (*Fetcher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Fetcher{
		cfg:           cfg,
		allocator:     allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears down the browser and allocator contexts.
func (f *Fetcher) Close() {
	f.browserCancel()
	f.allocCancel()
}

// Fetch navigates with a headless browser, waits for listing cards to be
// present, and returns the fully rendered DOM. A navigation timeout or a
// page that never shows cards is a FetchError, not an empty result.
func (f *Fetcher) Fetch(ctx context.Context) (watch.FetchResult, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	defer tabCancel()

	taskCtx, taskCancel := context.WithTimeout(tabCtx, f.cfg.NavigationTimeout)
	defer taskCancel()

	stopForward := forwardCancel(ctx, taskCancel)
	defer stopForward()

	meta := newResponseMeta()
	chromedp.ListenTarget(tabCtx, meta.captureEvent)

	start := time.Now()
	html, finalURL, err := f.runHeadless(taskCtx)
	if err != nil {
		return watch.FetchResult{}, watch.NewFetchError(f.cfg.URL, err)
	}

	status, responseURL := meta.snapshotWithFallbacks(f.cfg.URL, finalURL)
	return watch.FetchResult{
		URL:          responseURL,
		StatusCode:   status,
		Body:         []byte(html),
		Duration:     time.Since(start),
		UsedHeadless: true,
	}, nil
}

func (f *Fetcher) runHeadless(ctx context.Context) (string, string, error) {
	var (
		html         string
		finalURL     string
		cardsPresent bool
	)
	actions := []chromedp.Action{
		f.networkSetupAction(),
		chromedp.Navigate(f.cfg.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(cardPresentExpression(), &cardsPresent,
			chromedp.WithPollingInterval(250*time.Millisecond)),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (f *Fetcher) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

// cardPresentExpression builds the JS predicate the renderer polls until
// a listing card appears in the DOM.
func cardPresentExpression() string {
	quoted := make([]string, 0, len(parser.CardSelectors))
	for _, sel := range parser.CardSelectors {
		quoted = append(quoted, fmt.Sprintf("%q", sel))
	}
	return fmt.Sprintf(
		"[%s].some(function(sel) { return document.querySelector(sel) !== null; })",
		strings.Join(quoted, ", "),
	)
}

func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

type responseMeta struct {
	mu     sync.Mutex
	status int
	url    string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	m.status = int(resp.Response.Status)
	m.url = resp.Response.URL
	m.mu.Unlock()
}

func (m *responseMeta) snapshotWithFallbacks(requestURL, finalURL string) (int, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := m.url
	switch {
	case url != "":
	case finalURL != "":
		url = finalURL
	default:
		url = requestURL
	}
	status := m.status
	if status == 0 {
		status = 200
	}
	return status, url
}
