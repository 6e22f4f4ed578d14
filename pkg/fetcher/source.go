package fetcher

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// IsURL reports whether source names a web page rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Open acquires a session for source: URLs are rendered through f, any
// other source is read from disk.
func Open(ctx context.Context, source string, f Fetcher, opts Options) (Session, error) {
	if IsURL(source) {
		logger.Info("fetching page", "url", source, "fetcher", f.Type())
		return f.Fetch(ctx, source, opts)
	}
	return OpenFile(source)
}

// OpenFile reads a local markup file into a session with no source URL.
func OpenFile(path string) (Session, error) {
	logger.Info("reading local file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrUnsupportedSource, path)
	}

	snap, err := dom.Parse(string(data), "")
	if err != nil {
		return nil, err
	}
	return NewSnapshotSession(snap), nil
}
