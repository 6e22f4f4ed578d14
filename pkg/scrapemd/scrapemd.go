package scrapemd

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/batch"
	"github.com/jmylchreest/scrapemd/pkg/cleaner"
	"github.com/jmylchreest/scrapemd/pkg/fetcher"
	"github.com/jmylchreest/scrapemd/pkg/images"
	"github.com/jmylchreest/scrapemd/pkg/render"
	"github.com/jmylchreest/scrapemd/pkg/sanitizer"
	"github.com/jmylchreest/scrapemd/pkg/splitter"
)

// ErrInvalidConfig is returned by New when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Document is a page converted to Markdown and split into parts.
type Document struct {
	Title     string
	SourceURL string
	Markdown  string           // full document, headers included
	Chunks    []splitter.Chunk // Markdown split to the chunk budget
	Stats     *sanitizer.Stats
}

// ImageSet is the outcome of image extraction.
type ImageSet struct {
	Batches [][]images.Image
	Result  *images.Result
}

// Count returns the number of downloaded images.
func (s *ImageSet) Count() int {
	return len(s.Result.Images)
}

// Scrapemd is the main entry point for page conversion.
type Scrapemd struct {
	fetcher   fetcher.Fetcher
	sanitizer *sanitizer.Sanitizer
	renderer  *render.Renderer
	cleaner   cleaner.Cleaner
	extractor *images.Extractor
	config    Config
}

// New creates a new Scrapemd instance.
func New(opts ...Option) (*Scrapemd, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Use injected fetcher or create a default static one
	f := cfg.Fetcher
	if f == nil {
		f = fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.FetchTimeout,
		})
	}

	cl := cfg.Cleaner
	if cl == nil {
		cl = cleaner.NewMarkdown()
	}

	downloader := images.NewDownloader(images.DownloaderConfig{
		OutputDir:       cfg.OutputDir,
		UserAgent:       cfg.UserAgent,
		DownloadTimeout: cfg.DownloadTimeout,
		ProbeTimeout:    cfg.ProbeTimeout,
	})

	logger.Debug("scrapemd initialized",
		"fetcher", f.Type(),
		"cleaner", cl.Name(),
		"max_chunk_size", cfg.MaxChunkSize,
		"batch_size", cfg.BatchSize)

	return &Scrapemd{
		fetcher:   f,
		sanitizer: sanitizer.New(sanitizer.DefaultConfig()),
		renderer:  render.New(),
		cleaner:   cl,
		extractor: images.NewExtractor(downloader),
		config:    cfg,
	}, nil
}

// Config returns the effective configuration.
func (s *Scrapemd) Config() Config {
	return s.config
}

func (s *Scrapemd) open(ctx context.Context, source string) (fetcher.Session, error) {
	return fetcher.Open(ctx, source, s.fetcher, fetcher.Options{
		UserAgent: s.config.UserAgent,
		Timeout:   s.config.FetchTimeout,
	})
}

// Markdown converts source, a URL or a local markup file, to Markdown and
// splits it into parts of at most MaxChunkSize characters.
func (s *Scrapemd) Markdown(ctx context.Context, source string) (*Document, error) {
	session, err := s.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	snap := session.Snapshot()
	markup, err := s.sanitizer.Sanitize(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to sanitize: %w", err)
	}

	md, err := s.renderer.Render(markup)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.cleaner.Clean(md)
	if err != nil {
		return nil, fmt.Errorf("cleaner %s failed: %w", s.cleaner.Name(), err)
	}

	full := markup.Headers.Prefix() + cleaned
	chunks := splitter.Split(full, s.config.MaxChunkSize)

	logger.Info("markdown converted",
		"title", markup.Headers.Title,
		"chars", humanize.Comma(int64(utf8.RuneCountInString(full))),
		"parts", len(chunks))

	return &Document{
		Title:     markup.Headers.Title,
		SourceURL: snap.SourceURL(),
		Markdown:  full,
		Chunks:    chunks,
		Stats:     markup.Stats,
	}, nil
}

// Images downloads every image of source into OutputDir and groups the
// downloads into batches of BatchSize. Failed downloads are recorded on the
// result, not returned as errors.
func (s *Scrapemd) Images(ctx context.Context, source string) (*ImageSet, error) {
	session, err := s.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	result, err := s.extractor.Extract(ctx, session, session.Snapshot().SourceURL())
	if err != nil {
		return nil, err
	}

	return &ImageSet{
		Batches: batch.Split(result.Images, s.config.BatchSize),
		Result:  result,
	}, nil
}

// Close releases fetcher resources.
func (s *Scrapemd) Close() error {
	return s.fetcher.Close()
}
