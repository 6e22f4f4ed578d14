// Package dom exposes a rendered page as a read-only markup tree.
//
// Consumers see elements only through the narrow Element interface: the
// element kind, attribute lookup, descendant text, and child elements. The
// sanitizer and the image extractor need nothing more, which lets the same
// code walk a parsed file, a statically fetched page, or live nodes from a
// headless browser.
package dom

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a single markup element.
type Element interface {
	// Kind returns the lower-case tag name (e.g. "img", "td").
	Kind() string

	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)

	// Text returns the concatenated text of all descendants.
	Text() string

	// Children returns the direct child elements in document order.
	Children() []Element
}

// Snapshot is an immutable markup tree plus the URL it was rendered from.
// The source URL is empty for local documents.
type Snapshot struct {
	markup    string
	sourceURL string
	doc       *goquery.Document
}

// Parse builds a Snapshot from raw markup.
func Parse(markup, sourceURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Snapshot{
		markup:    markup,
		sourceURL: sourceURL,
		doc:       doc,
	}, nil
}

// HTML returns the markup the snapshot was parsed from.
func (s *Snapshot) HTML() string {
	return s.markup
}

// SourceURL returns the page URL, or "" for local documents.
func (s *Snapshot) SourceURL() string {
	return s.sourceURL
}

// Root returns the document element tree.
func (s *Snapshot) Root() Element {
	return selectionElement{s.doc.Selection}
}

// Title returns the trimmed text of the first <title> element.
func (s *Snapshot) Title() string {
	titles := FindAll(s.Root(), "title")
	if len(titles) == 0 {
		return ""
	}
	return strings.TrimSpace(titles[0].Text())
}

// Images returns every <img> element in document order.
func (s *Snapshot) Images(_ context.Context) ([]Element, error) {
	return FindAll(s.Root(), "img"), nil
}

// Document returns a fresh, mutable copy of the markup tree. The snapshot
// itself is never modified; callers own the returned document.
func (s *Snapshot) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// FindAll walks the tree rooted at el depth-first and returns every element
// of the given kind in document order. The root itself is included when it
// matches.
func FindAll(el Element, kind string) []Element {
	var found []Element
	Walk(el, func(e Element) {
		if e.Kind() == kind {
			found = append(found, e)
		}
	})
	return found
}

// Walk calls fn for el and each of its descendants in document order.
func Walk(el Element, fn func(Element)) {
	fn(el)
	for _, child := range el.Children() {
		Walk(child, fn)
	}
}

// selectionElement adapts a single-node goquery selection.
type selectionElement struct {
	sel *goquery.Selection
}

// FromSelection wraps the first node of a goquery selection as an Element.
func FromSelection(sel *goquery.Selection) Element {
	return selectionElement{sel.First()}
}

func (e selectionElement) Kind() string {
	return strings.ToLower(goquery.NodeName(e.sel))
}

func (e selectionElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e selectionElement) Text() string {
	return e.sel.Text()
}

func (e selectionElement) Children() []Element {
	var children []Element
	e.sel.Children().Each(func(_ int, c *goquery.Selection) {
		children = append(children, selectionElement{c})
	})
	return children
}
