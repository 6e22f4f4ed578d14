// Package fetcher provides the headless Chrome renderer used by the CLI.
// Pages are loaded, given time to settle, scrolled to trigger lazy
// loading, and kept open so images can be queried from the live DOM.
package fetcher

import (
	"time"

	"github.com/jmylchreest/scrapemd/pkg/fetcher"
)

// Config holds configuration for the dynamic fetcher.
type Config struct {
	UserAgent    string
	Timeout      time.Duration // navigation and rendering budget
	SettleDelay  time.Duration // wait after navigation before scrolling
	ScrollPasses int           // scroll-to-bottom passes
	ScrollDelay  time.Duration // pause after each scroll pass
	ChromePath   string        // overrides the Chrome lookup
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:    fetcher.DefaultUserAgent,
		Timeout:      60 * time.Second,
		SettleDelay:  5 * time.Second,
		ScrollPasses: 3,
		ScrollDelay:  time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig. Negative durations and
// pass counts disable the corresponding step.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.ScrollPasses == 0 {
		c.ScrollPasses = def.ScrollPasses
	}
	if c.ScrollDelay == 0 {
		c.ScrollDelay = def.ScrollDelay
	}
	return c
}
