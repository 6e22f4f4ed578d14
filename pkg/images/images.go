// Package images collects image references from a page snapshot and
// downloads them to local storage under deterministic names.
package images

import (
	"errors"
	"fmt"
)

// NoDescription is used when an image has neither alt nor title text.
const NoDescription = "No description"

// Ref is an image reference resolved from the page.
type Ref struct {
	URL         string // absolute URL
	Description string // alt text, else title text, else NoDescription
}

// Image is a downloaded image. Its JSON form is the batch manifest entry.
type Image struct {
	Path        string `json:"path"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Failure records an image that could not be downloaded.
type Failure struct {
	URL string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.URL, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Error types for distinguishing download failures.
// Check with errors.Is(err, images.ErrNotImage).
var (
	// ErrStatus indicates a non-2xx response.
	ErrStatus = errors.New("unexpected HTTP status")
	// ErrNotImage indicates the response content-type is not image/*.
	ErrNotImage = errors.New("response is not an image")
	// ErrEmptyImage indicates the response body was empty.
	ErrEmptyImage = errors.New("image is empty")
)
