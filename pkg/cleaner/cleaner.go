// Package cleaner provides interfaces and implementations for normalizing
// Markdown produced by the renderer before it is split into chunks.
package cleaner

// Cleaner transforms Markdown text into its normalized form.
type Cleaner interface {
	// Clean transforms the input and returns the result.
	Clean(content string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
