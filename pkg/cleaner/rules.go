package cleaner

import (
	"regexp"
	"strings"
)

// ZeroWidthJoiner is inserted after a URL scheme to defang links.
const ZeroWidthJoiner = "\u200d"

var (
	base64URIPattern    = regexp.MustCompile(`data:[^;\s]+;base64,[A-Za-z0-9+/=]+`)
	schemePattern       = regexp.MustCompile(`https?://`)
	inlineHeaderPattern = regexp.MustCompile(`#{1,6} `)
	bulletPattern       = regexp.MustCompile(`^(\s*)[-*]\s+`)
)

// NewBase64Scrubber replaces inline base64 data URIs with placeholder.
// It applies inside code blocks as well.
func NewBase64Scrubber(placeholder string) Cleaner {
	return &lineCleaner{
		name: "base64",
		code: true,
		rewrite: func(line string) []string {
			return []string{base64URIPattern.ReplaceAllLiteralString(line, placeholder)}
		},
	}
}

// NewLinkDefanger inserts a zero-width joiner after every http:// or
// https:// scheme so chat clients do not unfurl the link.
func NewLinkDefanger() Cleaner {
	return &lineCleaner{
		name: "defang",
		rewrite: func(line string) []string {
			return []string{defang(line)}
		},
	}
}

func defang(line string) string {
	locs := schemePattern.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return line
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(line[last:loc[1]])
		if !strings.HasPrefix(line[loc[1]:], ZeroWidthJoiner) {
			sb.WriteString(ZeroWidthJoiner)
		}
		last = loc[1]
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// NewHeaderBreaker moves header markers that follow other text onto their
// own line. Table rows are left alone so "#" column headings survive.
func NewHeaderBreaker() Cleaner {
	return &lineCleaner{
		name:    "headers",
		rewrite: breakHeaders,
	}
}

func breakHeaders(line string) []string {
	if strings.HasPrefix(strings.TrimSpace(line), "|") {
		return []string{line}
	}

	var out []string
	for {
		at := inlineHeaderAt(line)
		if at < 0 {
			break
		}
		out = append(out, strings.TrimRight(line[:at], " \t"))
		line = line[at:]
	}
	return append(out, line)
}

// inlineHeaderAt returns the offset of the first header marker that follows
// a space or tab and is preceded by non-blank text, or -1. The whitespace is
// not part of the match, so adjacent markers are all seen.
func inlineHeaderAt(line string) int {
	for _, loc := range inlineHeaderPattern.FindAllStringIndex(line, -1) {
		at := loc[0]
		if at == 0 || (line[at-1] != ' ' && line[at-1] != '\t') {
			continue
		}
		if strings.TrimSpace(line[:at]) != "" {
			return at
		}
	}
	return -1
}

// NewBulletNormalizer rewrites "-" and "*" list markers to "* ", keeping
// indentation.
func NewBulletNormalizer() Cleaner {
	return &lineCleaner{
		name: "bullets",
		rewrite: func(line string) []string {
			return []string{bulletPattern.ReplaceAllString(line, "${1}* ")}
		},
	}
}

// BlankLineCollapser empties whitespace-only lines and collapses runs of
// blank lines into one. Code blocks keep their blank lines.
type BlankLineCollapser struct{}

// NewBlankLineCollapser creates a BlankLineCollapser.
func NewBlankLineCollapser() *BlankLineCollapser {
	return &BlankLineCollapser{}
}

func (c *BlankLineCollapser) Clean(content string) (string, error) {
	lines := splitLines(content)
	out := make([]mdLine, 0, len(lines))
	blank := false
	for _, l := range lines {
		if l.code {
			out = append(out, l)
			blank = false
			continue
		}
		if strings.TrimSpace(l.text) == "" {
			if !blank {
				out = append(out, mdLine{})
			}
			blank = true
			continue
		}
		out = append(out, l)
		blank = false
	}
	return joinLines(out), nil
}

func (c *BlankLineCollapser) Name() string {
	return "blank-lines"
}
