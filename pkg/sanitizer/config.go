// Package sanitizer strips non-content and embedded-binary markup from a
// page snapshot before it is converted to Markdown.
package sanitizer

// Config defines what the sanitizer removes.
type Config struct {
	// RemoveTags are element kinds whose entire subtree is discarded.
	RemoveTags []string `json:"remove_tags"`

	// StripImages removes every <img>. Images are handled by the image
	// extractor, never inlined into text output.
	StripImages bool `json:"strip_images"`

	// ReservedAttrPrefix marks attributes that are always dropped.
	ReservedAttrPrefix string `json:"reserved_attr_prefix"`

	// PayloadAttrs are dropped when their value contains PayloadMarker.
	PayloadAttrs []string `json:"payload_attrs"`

	// PayloadMarker identifies an inline binary payload in an attribute value.
	PayloadMarker string `json:"payload_marker"`

	// FillEmptyCells replaces blank table cells with a single space so the
	// converted table keeps its column layout.
	FillEmptyCells bool `json:"fill_empty_cells"`

	// FenceCodeBlocks rewrites <pre><code> pairs as fenced code blocks.
	FenceCodeBlocks bool `json:"fence_code_blocks"`
}

// DefaultConfig returns the fixed configuration used by the Markdown path.
func DefaultConfig() *Config {
	return &Config{
		RemoveTags:         []string{"script", "style", "iframe", "nav", "footer", "svg", "canvas"},
		StripImages:        true,
		ReservedAttrPrefix: "data-",
		PayloadAttrs:       []string{"src", "srcset"},
		PayloadMarker:      "base64",
		FillEmptyCells:     true,
		FenceCodeBlocks:    true,
	}
}
