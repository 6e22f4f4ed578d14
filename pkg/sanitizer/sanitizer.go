package sanitizer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// Headers are the lines prepended to the final Markdown document.
type Headers struct {
	Title  string // page <title>, trimmed
	Source string // source URL, empty for local documents
}

// Prefix renders the headers, title first. Each present header is followed
// by a blank line.
func (h Headers) Prefix() string {
	var sb strings.Builder
	if h.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(h.Title)
		sb.WriteString("\n\n")
	}
	if h.Source != "" {
		sb.WriteString("Source: ")
		sb.WriteString(h.Source)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// CodeBlock is a <pre><code> pair lifted out of the markup.
type CodeBlock struct {
	Language string
	Body     string
}

// Fence renders the block as a fenced Markdown code block. The fence is
// longer than any backtick run inside the body.
func (b CodeBlock) Fence() string {
	fence := strings.Repeat("`", max(3, longestRun(b.Body, '`')+1))
	body := strings.TrimSuffix(b.Body, "\n")
	return fence + b.Language + "\n" + body + "\n" + fence
}

// Markup is sanitized markup ready for conversion. Code blocks are replaced
// by placeholder paragraphs that RestoreCodeBlocks swaps back after
// conversion, so the converter never escapes their bodies.
type Markup struct {
	html       string
	doc        *goquery.Document
	SourceURL  string
	Headers    Headers
	CodeBlocks []CodeBlock
	Stats      *Stats
}

// HTML returns the serialized sanitized markup.
func (m *Markup) HTML() string {
	return m.html
}

// Root returns the sanitized tree for inspection.
func (m *Markup) Root() dom.Element {
	return dom.FromSelection(m.doc.Selection)
}

// RestoreCodeBlocks replaces each placeholder in converted text with its
// fenced code block.
func (m *Markup) RestoreCodeBlocks(text string) string {
	for i, block := range m.CodeBlocks {
		text = strings.Replace(text, placeholder(i), block.Fence(), 1)
	}
	return text
}

// placeholder is alphanumeric so Markdown converters leave it untouched.
func placeholder(i int) string {
	return fmt.Sprintf("scrapemdcodeblock%dx", i)
}

// Sanitizer removes non-content and embedded-binary markup.
type Sanitizer struct {
	config *Config
}

// New creates a Sanitizer. If config is nil, DefaultConfig() is used.
func New(config *Config) *Sanitizer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Sanitizer{config: config}
}

// Sanitize derives sanitized markup from a snapshot. The snapshot is not
// modified.
func (s *Sanitizer) Sanitize(snap *dom.Snapshot) (*Markup, error) {
	doc, err := snap.Document()
	if err != nil {
		return nil, err
	}

	m := &Markup{
		doc:       doc,
		SourceURL: snap.SourceURL(),
		Headers: Headers{
			Title:  snap.Title(),
			Source: snap.SourceURL(),
		},
		Stats: NewStats(),
	}
	m.Stats.InputBytes = len(snap.HTML())

	// Order matters: drop whole subtrees first so later passes see less.
	if len(s.config.RemoveTags) > 0 {
		s.removeElements(doc, strings.Join(s.config.RemoveTags, ", "), m.Stats)
	}
	if s.config.StripImages {
		s.removeElements(doc, "img", m.Stats)
	}
	s.cleanAttributes(doc, m.Stats)
	if s.config.FillEmptyCells {
		s.fillEmptyCells(doc, m.Stats)
	}
	if s.config.FenceCodeBlocks {
		m.CodeBlocks = s.liftCodeBlocks(doc, m.Stats)
	}

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sanitized HTML: %w", err)
	}
	m.html = out
	m.Stats.OutputBytes = len(out)

	logger.Debug("markup sanitized", "stats", m.Stats.String())
	return m, nil
}

// removeElements removes every element matching selector, subtree included.
func (s *Sanitizer) removeElements(doc *goquery.Document, selector string, stats *Stats) {
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		stats.RecordRemoval(goquery.NodeName(sel))
		sel.Remove()
	})
}

// cleanAttributes drops reserved-prefix attributes and payload-bearing
// source attributes.
func (s *Sanitizer) cleanAttributes(doc *goquery.Document, stats *Stats) {
	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, key := range s.droppedAttrs(sel.Nodes[0]) {
			sel.RemoveAttr(key)
			stats.AttributesRemoved++
		}
	})
}

func (s *Sanitizer) droppedAttrs(n *html.Node) []string {
	var keys []string
	for _, a := range n.Attr {
		if s.config.ReservedAttrPrefix != "" && strings.HasPrefix(a.Key, s.config.ReservedAttrPrefix) {
			keys = append(keys, a.Key)
			continue
		}
		if s.isPayloadAttr(a.Key) && s.config.PayloadMarker != "" && strings.Contains(a.Val, s.config.PayloadMarker) {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

func (s *Sanitizer) isPayloadAttr(key string) bool {
	for _, name := range s.config.PayloadAttrs {
		if key == name {
			return true
		}
	}
	return false
}

// fillEmptyCells gives blank table cells a single space of content.
func (s *Sanitizer) fillEmptyCells(doc *goquery.Document, stats *Stats) {
	doc.Find("table td, table th").Each(func(_ int, cell *goquery.Selection) {
		if strings.TrimSpace(cell.Text()) == "" {
			cell.SetText(" ")
			stats.CellsFilled++
		}
	})
}

// liftCodeBlocks replaces each outermost <pre> holding a <code> child with a
// placeholder paragraph and returns the lifted blocks in document order.
func (s *Sanitizer) liftCodeBlocks(doc *goquery.Document, stats *Stats) []CodeBlock {
	var blocks []CodeBlock
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if pre.ParentsFiltered("pre").Length() > 0 {
			return
		}
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}

		block := CodeBlock{
			Language: codeLanguage(code),
			Body:     code.Text(),
		}

		p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		p.AppendChild(&html.Node{Type: html.TextNode, Data: placeholder(len(blocks))})
		pre.ReplaceWithNodes(p)

		blocks = append(blocks, block)
		stats.CodeBlocks++
	})
	return blocks
}

// codeLanguage reads the language from the first class name, dropping the
// conventional "language-" prefix.
func codeLanguage(code *goquery.Selection) string {
	class, ok := code.Attr("class")
	if !ok {
		return ""
	}
	fields := strings.Fields(class)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[0], "language-")
}

func longestRun(s string, r rune) int {
	longest, current := 0, 0
	for _, c := range s {
		if c == r {
			current++
			longest = max(longest, current)
		} else {
			current = 0
		}
	}
	return longest
}
