package cleaner

import (
	"strings"
)

// DefaultBase64Placeholder replaces inline base64 data URIs.
const DefaultBase64Placeholder = "[Base64 Image Removed]"

// MarkdownCleaner normalizes rendered Markdown for chat delivery:
//   - base64 data URIs are replaced with a placeholder
//   - URL schemes are defanged with a zero-width joiner
//   - inline header markers are moved onto their own line
//   - list bullets are rewritten to "* "
//   - runs of blank lines collapse to one
//
// The result is trimmed. Cleaning already-clean output is a no-op.
type MarkdownCleaner struct {
	chain *ChainCleaner
}

// MarkdownOption configures the markdown cleaner.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	// Placeholder replaces each base64 data URI.
	Placeholder string
	// DefangLinks inserts a zero-width joiner after URL schemes.
	DefangLinks bool
}

// WithBase64Placeholder sets the text that replaces base64 data URIs.
func WithBase64Placeholder(placeholder string) MarkdownOption {
	return func(c *markdownConfig) {
		c.Placeholder = placeholder
	}
}

// WithDefangLinks configures whether URL schemes are defanged.
func WithDefangLinks(defang bool) MarkdownOption {
	return func(c *markdownConfig) {
		c.DefangLinks = defang
	}
}

// NewMarkdown creates a new Markdown cleaner.
func NewMarkdown(opts ...MarkdownOption) *MarkdownCleaner {
	cfg := &markdownConfig{
		Placeholder: DefaultBase64Placeholder,
		DefangLinks: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	cleaners := []Cleaner{NewBase64Scrubber(cfg.Placeholder)}
	if cfg.DefangLinks {
		cleaners = append(cleaners, NewLinkDefanger())
	}
	cleaners = append(cleaners,
		NewHeaderBreaker(),
		NewBulletNormalizer(),
		NewBlankLineCollapser(),
	)

	return &MarkdownCleaner{chain: NewChain(cleaners...)}
}

// Clean normalizes Markdown. The input is trimmed before the passes run so
// the trimmed output is itself a fixed point.
func (c *MarkdownCleaner) Clean(content string) (string, error) {
	out, err := c.chain.Clean(strings.TrimSpace(content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Name returns the cleaner type.
func (c *MarkdownCleaner) Name() string {
	return "markdown"
}

// Steps returns the names of the passes in application order.
func (c *MarkdownCleaner) Steps() string {
	return c.chain.Name()
}
