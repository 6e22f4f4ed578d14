package images

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// Source enumerates the image elements of a page in document order.
// Snapshots and live browser sessions both satisfy it.
type Source interface {
	Images(ctx context.Context) ([]dom.Element, error)
}

// Result summarizes an extraction run.
type Result struct {
	Found    int       // image elements on the page
	Refs     []Ref     // resolved references, in order
	Images   []Image   // downloaded images, in order
	Failures []Failure // references that could not be downloaded
	Bytes    int64     // total bytes written
}

// Extractor enumerates, resolves and downloads a page's images.
type Extractor struct {
	downloader *Downloader
}

// NewExtractor creates an Extractor that writes through d.
func NewExtractor(d *Downloader) *Extractor {
	return &Extractor{downloader: d}
}

// Extract downloads every resolvable image of src. Individual download
// failures are logged and recorded on the result; only enumeration or
// output directory errors are returned.
func (e *Extractor) Extract(ctx context.Context, src Source, sourceURL string) (*Result, error) {
	if err := os.MkdirAll(e.downloader.OutputDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	elements, err := src.Images(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate images: %w", err)
	}
	logger.Info("found image elements", "count", len(elements))

	result := &Result{
		Found:  len(elements),
		Refs:   Collect(elements, sourceURL),
		Images: []Image{},
	}

	for i, ref := range result.Refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, n, err := e.downloader.Download(ctx, ref)
		if err != nil {
			logger.Warn("image download failed",
				"index", i+1,
				"total", len(result.Refs),
				"url", ref.URL,
				"error", err)
			result.Failures = append(result.Failures, Failure{URL: ref.URL, Err: err})
			continue
		}

		result.Images = append(result.Images, Image{
			Path:        path,
			Description: ref.Description,
			URL:         ref.URL,
		})
		result.Bytes += n
		logger.Info("downloaded image",
			"index", i+1,
			"total", len(result.Refs),
			"path", path,
			"size", humanize.Bytes(uint64(n)))
	}

	logger.Info("image extraction complete",
		"found", result.Found,
		"resolved", len(result.Refs),
		"downloaded", len(result.Images),
		"failed", len(result.Failures),
		"bytes", humanize.Bytes(uint64(result.Bytes)))
	return result, nil
}
