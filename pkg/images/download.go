package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultExtension is used when neither the URL nor a probe identifies the
// image type.
const DefaultExtension = ".jpg"

// knownExtensions are URL suffixes trusted without probing.
var knownExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

// mimeExtensions maps probed content-types to extensions.
var mimeExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
}

// DownloaderConfig configures image downloads.
type DownloaderConfig struct {
	OutputDir       string
	UserAgent       string
	DownloadTimeout time.Duration
	ProbeTimeout    time.Duration

	// Client overrides the HTTP client. Defaults to a fresh client.
	Client *http.Client
}

// DefaultDownloaderConfig returns the defaults used by the CLI.
func DefaultDownloaderConfig() DownloaderConfig {
	return DownloaderConfig{
		OutputDir:       "images",
		DownloadTimeout: 10 * time.Second,
		ProbeTimeout:    5 * time.Second,
	}
}

// Downloader fetches images one at a time into OutputDir.
type Downloader struct {
	config DownloaderConfig
	client *http.Client
}

// NewDownloader creates a Downloader, filling zero fields from
// DefaultDownloaderConfig.
func NewDownloader(cfg DownloaderConfig) *Downloader {
	def := DefaultDownloaderConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = def.DownloadTimeout
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{config: cfg, client: client}
}

// OutputDir returns the directory images are written to.
func (d *Downloader) OutputDir() string {
	return d.config.OutputDir
}

// Extension resolves the file extension for an image URL: a known suffix
// on the URL path, else the probed content-type, else DefaultExtension.
func (d *Downloader) Extension(ctx context.Context, rawURL string) string {
	if ext := urlExtension(rawURL); ext != "" {
		return ext
	}

	contentType, err := d.probe(ctx, rawURL)
	if err != nil {
		return DefaultExtension
	}
	if ext, ok := mimeExtensions[contentType]; ok {
		return ext
	}
	return DefaultExtension
}

func urlExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	for _, known := range knownExtensions {
		if ext == known {
			return ext
		}
	}
	return ""
}

// probe issues a HEAD request and returns the bare media type.
func (d *Downloader) probe(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.ProbeTimeout)
	defer cancel()

	req, err := d.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return mediaType(resp.Header.Get("Content-Type")), nil
}

// FileName returns the deterministic file name for an image URL: the hex
// SHA-256 of the URL plus ext.
func FileName(rawURL, ext string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:]) + ext
}

// Download fetches ref into OutputDir and returns the written path. The
// response must be a 2xx image/* with a non-empty body; otherwise no file is
// left behind.
func (d *Downloader) Download(ctx context.Context, ref Ref) (string, int64, error) {
	target := filepath.Join(d.config.OutputDir, FileName(ref.URL, d.Extension(ctx, ref.URL)))

	ctx, cancel := context.WithTimeout(ctx, d.config.DownloadTimeout)
	defer cancel()

	req, err := d.newRequest(ctx, http.MethodGet, ref.URL)
	if err != nil {
		return "", 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	if ct := mediaType(resp.Header.Get("Content-Type")); !strings.HasPrefix(ct, "image/") {
		return "", 0, fmt.Errorf("%w: %q", ErrNotImage, ct)
	}

	n, err := writeFile(target, resp.Body)
	if err != nil {
		return "", 0, err
	}
	return target, n, nil
}

func (d *Downloader) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if d.config.UserAgent != "" {
		req.Header.Set("User-Agent", d.config.UserAgent)
	}
	return req, nil
}

// writeFile streams r into a temporary file beside path and renames it into
// place once a non-empty body is written. An existing file at path is left
// untouched on failure.
func writeFile(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if n == 0 {
		return 0, ErrEmptyImage
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}
