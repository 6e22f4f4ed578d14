// Package scrapemd provides the public API for turning web pages and local
// markup into chat-sized Markdown parts and batched image manifests.
package scrapemd

import (
	"time"

	"github.com/jmylchreest/scrapemd/pkg/batch"
	"github.com/jmylchreest/scrapemd/pkg/cleaner"
	"github.com/jmylchreest/scrapemd/pkg/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/splitter"
)

// Config holds all pipeline configuration.
type Config struct {
	// Markdown settings
	MaxChunkSize int `yaml:"max_chunk_size" validate:"min=1"`

	// Image settings
	BatchSize       int           `yaml:"batch_size" validate:"min=1"`
	OutputDir       string        `yaml:"images_dir" validate:"required"`
	DownloadTimeout time.Duration `yaml:"download_timeout" validate:"gt=0"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout" validate:"gt=0"`

	// Fetch settings
	UserAgent    string        `yaml:"user_agent" validate:"required"`
	FetchTimeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// Injected components (optional)
	Fetcher fetcher.Fetcher `yaml:"-" validate:"-"` // Custom fetcher, defaults to static
	Cleaner cleaner.Cleaner `yaml:"-" validate:"-"` // Custom cleaner, defaults to markdown normalization
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:    splitter.DefaultMaxChunkSize,
		BatchSize:       batch.DefaultSize,
		OutputDir:       "images",
		DownloadTimeout: 10 * time.Second,
		ProbeTimeout:    5 * time.Second,
		UserAgent:       fetcher.DefaultUserAgent,
		FetchTimeout:    60 * time.Second,
	}
}

// Option configures Scrapemd.
type Option func(*Config)

// WithMaxChunkSize sets the per-part character budget.
func WithMaxChunkSize(n int) Option {
	return func(c *Config) {
		c.MaxChunkSize = n
	}
}

// WithBatchSize sets the number of images per manifest.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithOutputDir sets the directory downloaded images are written to.
func WithOutputDir(dir string) Option {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

// WithDownloadTimeout sets the per-image download timeout.
func WithDownloadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.DownloadTimeout = d
	}
}

// WithProbeTimeout sets the content-type probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ProbeTimeout = d
	}
}

// WithUserAgent sets the HTTP user agent.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithFetchTimeout sets the page fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.FetchTimeout = d
	}
}

// WithFetcher injects a custom fetcher.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Config) {
		c.Fetcher = f
	}
}

// WithCleaner injects a custom cleaner.
func WithCleaner(cl cleaner.Cleaner) Option {
	return func(c *Config) {
		c.Cleaner = cl
	}
}
