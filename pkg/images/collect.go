package images

import (
	"net/url"
	"strings"

	"github.com/jmylchreest/scrapemd/internal/logger"
	"github.com/jmylchreest/scrapemd/pkg/dom"
)

// Collect resolves image elements into references, preserving document
// order. Elements without a usable source are skipped.
func Collect(elements []dom.Element, sourceURL string) []Ref {
	var base *url.URL
	if sourceURL != "" {
		if u, err := url.Parse(sourceURL); err == nil && u.IsAbs() {
			base = u
		}
	}

	refs := make([]Ref, 0, len(elements))
	for _, el := range elements {
		src := imageSource(el)
		if src == "" {
			continue
		}

		abs, ok := resolveURL(src, base)
		if !ok {
			logger.Warn("skipping unresolvable image URL", "src", src)
			continue
		}

		refs = append(refs, Ref{
			URL:         abs,
			Description: describe(el),
		})
	}
	return refs
}

// imageSource returns src, falling back to data-src for lazy-loaded images
// whose src is missing. Elements whose source is an inline payload are
// skipped.
func imageSource(el dom.Element) string {
	src, _ := el.Attr("src")
	src = strings.TrimSpace(src)
	if src == "" {
		src, _ = el.Attr("data-src")
		src = strings.TrimSpace(src)
	}
	if isInline(src) {
		return ""
	}
	return src
}

func isInline(src string) bool {
	return strings.HasPrefix(strings.ToLower(src), "data:")
}

// resolveURL makes src absolute against base. Protocol-relative URLs take
// the base scheme, or https without a base.
func resolveURL(src string, base *url.URL) (string, bool) {
	if strings.HasPrefix(src, "//") {
		scheme := "https"
		if base != nil {
			scheme = base.Scheme
		}
		src = scheme + ":" + src
	}

	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if !ref.IsAbs() {
		if base == nil {
			return "", false
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", false
	}
	return ref.String(), true
}

func describe(el dom.Element) string {
	for _, attr := range []string{"alt", "title"} {
		if v, ok := el.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return NoDescription
}
