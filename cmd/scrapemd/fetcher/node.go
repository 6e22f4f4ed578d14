package fetcher

import (
	"strings"

	"github.com/chromedp/cdproto/cdp"

	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// nodeElement exposes a live DevTools node as a dom.Element.
type nodeElement struct {
	n *cdp.Node
}

func (e nodeElement) Kind() string {
	if e.n.LocalName != "" {
		return e.n.LocalName
	}
	return strings.ToLower(e.n.NodeName)
}

func (e nodeElement) Attr(name string) (string, bool) {
	return e.n.Attribute(name)
}

func (e nodeElement) Text() string {
	var sb strings.Builder
	collectText(e.n, &sb)
	return sb.String()
}

func collectText(n *cdp.Node, sb *strings.Builder) {
	n.RLock()
	defer n.RUnlock()
	for _, c := range n.Children {
		if c.NodeType == cdp.NodeTypeText {
			sb.WriteString(c.NodeValue)
			continue
		}
		collectText(c, sb)
	}
}

func (e nodeElement) Children() []dom.Element {
	e.n.RLock()
	defer e.n.RUnlock()

	var children []dom.Element
	for _, c := range e.n.Children {
		if c.NodeType == cdp.NodeTypeElement {
			children = append(children, nodeElement{c})
		}
	}
	return children
}
