// Package fetcher acquires rendered page snapshots. A Fetcher opens a
// Session for a URL; the session holds the snapshot and any live resources
// (such as a browser tab) until it is closed.
package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// DefaultUserAgent is a desktop Chrome identification string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher abstracts page rendering strategies.
type Fetcher interface {
	// Fetch renders the page at url and returns an open session.
	Fetch(ctx context.Context, url string, opts Options) (Session, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Session is a rendered page. It must be closed on every exit path.
type Session interface {
	// Snapshot returns the rendered markup.
	Snapshot() *dom.Snapshot

	// Images returns the page's image elements in document order. Live
	// sessions query the rendered page rather than the snapshot.
	Images(ctx context.Context) ([]dom.Element, error)

	// Close releases the session.
	Close() error
}

// Options controls fetching behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrFetch).
var (
	// ErrFetch indicates the page could not be retrieved or rendered.
	ErrFetch = errors.New("fetch failed")
	// ErrUnsupportedSource indicates the source is neither a URL nor a readable file.
	ErrUnsupportedSource = errors.New("unsupported source")
)

// snapshotSession is a Session over an already-parsed snapshot.
type snapshotSession struct {
	snap *dom.Snapshot
}

// NewSnapshotSession wraps a parsed snapshot as a Session. Closing it is a
// no-op.
func NewSnapshotSession(snap *dom.Snapshot) Session {
	return &snapshotSession{snap: snap}
}

func (s *snapshotSession) Snapshot() *dom.Snapshot {
	return s.snap
}

func (s *snapshotSession) Images(ctx context.Context) ([]dom.Element, error) {
	return s.snap.Images(ctx)
}

func (s *snapshotSession) Close() error {
	return nil
}
