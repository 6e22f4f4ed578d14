// Package render converts sanitized markup to Markdown.
package render

import (
	"fmt"
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/sanitizer"
)

// Tags dropped by the converter itself. The sanitizer already strips
// images; head content is emitted separately as document headers.
var skippedTags = []string{"head", "img"}

// removeTagsPlugin registers tags to be removed during conversion.
type removeTagsPlugin struct {
	tags []string
}

func (p *removeTagsPlugin) Name() string {
	return "remove-tags"
}

func (p *removeTagsPlugin) Init(conv *converter.Converter) error {
	for _, tag := range p.tags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return nil
}

// Renderer converts sanitized markup to Markdown text. A Renderer is safe
// for concurrent use.
type Renderer struct {
	conv *converter.Converter
}

// New creates a Renderer with the fixed conversion settings: ATX headings,
// "*" bullets, backtick fences, tables kept as pipe tables, no wrapping.
func New() *Renderer {
	return &Renderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithHeadingStyle(commonmark.HeadingStyleATX),
					commonmark.WithBulletListMarker("*"),
					commonmark.WithCodeBlockFence("```"),
				),
				table.NewTablePlugin(),
				&removeTagsPlugin{tags: skippedTags},
			),
		),
	}
}

// Render converts m to Markdown and restores its lifted code blocks.
// Relative links are resolved against the markup's source URL when known.
func (r *Renderer) Render(m *sanitizer.Markup) (string, error) {
	var opts []converter.ConvertOptionFunc
	if domain := domainOf(m.SourceURL); domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}

	out, err := r.conv.ConvertString(m.HTML(), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	out = m.RestoreCodeBlocks(out)
	logger.Debug("markup rendered", "markdown_bytes", len(out), "code_blocks", len(m.CodeBlocks))
	return out, nil
}

func domainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
