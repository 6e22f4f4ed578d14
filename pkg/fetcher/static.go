package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// StaticConfig holds configuration for the static fetcher.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// StaticFetcher uses Colly for plain HTTP fetching without script
// execution. It implements the Fetcher interface.
type StaticFetcher struct {
	config StaticConfig
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg StaticConfig) *StaticFetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultStaticConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	return &StaticFetcher{config: cfg}
}

// Fetch retrieves the page with Colly and parses it into a snapshot.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string, opts Options) (Session, error) {
	logger.Debug("static fetch starting", "url", targetURL)

	// Create a new collector for each request
	userAgent := coalesce(opts.UserAgent, f.config.UserAgent)
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	c.SetRequestTimeout(timeout)
	logger.Debug("static fetch configured", "user_agent", userAgent, "timeout", timeout)

	if len(opts.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range opts.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var (
		body     string
		finalURL = targetURL
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
		finalURL = r.Request.URL.String()
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", r.Headers.Get("Content-Type"),
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = fmt.Errorf("%w: %s: status %d: %w", ErrFetch, targetURL, statusCode, err)
		logger.Debug("static fetch error", "status", statusCode, "error", err)
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, targetURL, err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	snap, err := dom.Parse(body, finalURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	logger.Debug("static fetch complete", "url", finalURL, "title", snap.Title())
	return NewSnapshotSession(snap), nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
