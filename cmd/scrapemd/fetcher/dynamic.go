package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
	"github.com/jmylchreest/scrapemd/pkg/fetcher"
)

const (
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight)`
	scrollToTopJS    = `window.scrollTo(0, 0)`
)

// DynamicFetcher uses chromedp for JavaScript-rendered pages.
// It implements fetcher.Fetcher; each Fetch opens a new tab that stays
// alive until the returned session is closed.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamicFetcher creates a new dynamic fetcher. The browser process is
// started lazily on the first Fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created",
		"timeout", cfg.Timeout,
		"settle", cfg.SettleDelay,
		"scroll_passes", cfg.ScrollPasses)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

// Fetch renders targetURL in a new tab and returns a live session.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Session, error) {
	logger.Debug("chromedp starting browser context", "url", targetURL)

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	// Start the tab before applying a deadline; a deadline on the first Run
	// would tear the browser down with it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		return nil, fmt.Errorf("%w: failed to start browser: %w", fetcher.ErrFetch, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	runCtx, cancelRun := boundedContext(ctx, browserCtx, timeout)
	defer cancelRun()

	var html, location string
	actions := f.renderActions(targetURL, opts, &html, &location)

	logger.Debug("chromedp executing actions",
		"url", targetURL,
		"action_count", len(actions),
		"timeout", timeout)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		cancelBrowser()
		return nil, fmt.Errorf("%w: %s: %w", fetcher.ErrFetch, targetURL, err)
	}

	if location == "" {
		location = targetURL
	}
	snap, err := dom.Parse(html, location)
	if err != nil {
		cancelBrowser()
		return nil, fmt.Errorf("%w: %w", fetcher.ErrFetch, err)
	}

	logger.Debug("dynamic fetch complete",
		"url", location,
		"title", snap.Title(),
		"html_size", len(html))

	return &browserSession{
		ctx:     browserCtx,
		cancel:  cancelBrowser,
		snap:    snap,
		timeout: timeout,
	}, nil
}

// renderActions navigates, waits for the page to settle, scrolls to the
// bottom repeatedly to trigger lazy loading, returns to the top and reads
// the rendered document.
func (f *DynamicFetcher) renderActions(targetURL string, opts fetcher.Options, html, location *string) []chromedp.Action {
	var actions []chromedp.Action

	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}
	if opts.UserAgent != "" && opts.UserAgent != f.config.UserAgent {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent))
	}

	actions = append(actions,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
	)
	if f.config.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(f.config.SettleDelay))
	}
	for i := 0; i < f.config.ScrollPasses; i++ {
		actions = append(actions, chromedp.Evaluate(scrollToBottomJS, nil))
		if f.config.ScrollDelay > 0 {
			actions = append(actions, chromedp.Sleep(f.config.ScrollDelay))
		}
	}
	if f.config.ScrollPasses > 0 {
		actions = append(actions, chromedp.Evaluate(scrollToTopJS, nil))
	}

	return append(actions,
		chromedp.Location(location),
		chromedp.OuterHTML("html", html),
	)
}

// Close shuts down the browser process.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}

// browserSession is an open browser tab.
type browserSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	snap    *dom.Snapshot
	timeout time.Duration

	closeOnce sync.Once
}

func (s *browserSession) Snapshot() *dom.Snapshot {
	return s.snap
}

// Images queries the live page for <img> elements.
func (s *browserSession) Images(ctx context.Context) ([]dom.Element, error) {
	runCtx, cancel := boundedContext(ctx, s.ctx, s.timeout)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(runCtx,
		chromedp.Nodes("img", &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}

	elements := make([]dom.Element, len(nodes))
	for i, n := range nodes {
		elements[i] = nodeElement{n}
	}
	return elements, nil
}

// Close closes the tab. It is safe to call more than once.
func (s *browserSession) Close() error {
	s.closeOnce.Do(func() {
		logger.Debug("closing browser session", "url", s.snap.SourceURL())
		s.cancel()
	})
	return nil
}

// boundedContext derives a context from the browser context that expires
// after timeout or when parent is done.
func boundedContext(parent, browserCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(browserCtx, timeout)
	stop := context.AfterFunc(parent, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
