package fetcher

import (
	"context"
	"strings"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// minVisibleText is the body text length below which a page containing a
// loading or "enable JavaScript" hint is treated as unrendered.
const minVisibleText = 100

var (
	// spaMarkers are empty application mount points left by client-side
	// frameworks in server-sent markup.
	spaMarkers = []string{
		`<div id="root"></div>`,   // React
		`<div id="app"></div>`,    // Vue
		`<app-root></app-root>`,   // Angular
		`<div id="__next"></div>`, // Next.js
		`<div id="__nuxt"></div>`, // Nuxt.js
		`<div data-reactroot`,
		`ng-app`,
		`v-cloak`,
	}

	loadingHints  = []string{"loading", "please wait", "javascript required", "enable javascript"}
	noscriptHints = []string{"javascript", "enable", "required", "browser"}
)

// AutoFetcher fetches statically and falls back to a rendering fetcher when
// the static markup looks like it needs JavaScript.
type AutoFetcher struct {
	static  Fetcher
	dynamic Fetcher
}

// NewAuto creates an AutoFetcher. The dynamic fetcher is only used when a
// static fetch fails or returns an unrendered page.
func NewAuto(static, dynamic Fetcher) *AutoFetcher {
	return &AutoFetcher{static: static, dynamic: dynamic}
}

// Fetch tries the static fetcher first.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Session, error) {
	session, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		logger.Info("static fetch failed, rendering page", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	if NeedsJavaScript(session.Snapshot()) {
		_ = session.Close()
		logger.Info("page needs javascript, rendering", "url", url)
		return f.dynamic.Fetch(ctx, url, opts)
	}
	return session, nil
}

// NeedsJavaScript reports whether snap looks like an unrendered client-side
// application.
func NeedsJavaScript(snap *dom.Snapshot) bool {
	markup := strings.ToLower(snap.HTML())
	for _, marker := range spaMarkers {
		if strings.Contains(markup, strings.ToLower(marker)) {
			return true
		}
	}

	doc, err := snap.Document()
	if err != nil {
		return false
	}

	noscript := strings.ToLower(doc.Find("noscript").Text())
	if containsAny(noscript, noscriptHints) {
		return true
	}

	doc.Find("script, style, noscript, template").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())
	if len(text) < minVisibleText && containsAny(strings.ToLower(text), loadingHints) {
		return true
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Close releases both fetchers.
func (f *AutoFetcher) Close() error {
	staticErr := f.static.Close()
	if err := f.dynamic.Close(); err != nil {
		return err
	}
	return staticErr
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}
