package cleaner

import "strings"

// mdLine is one line of a Markdown document. Code lines belong to a fenced
// code block, delimiters included, and are left alone by most rules.
type mdLine struct {
	text string
	code bool
}

// splitLines tokenizes Markdown into lines, tracking fenced code blocks.
// A fence opens on a line starting with three or more backticks and closes
// on a backtick-only line at least as long.
func splitLines(content string) []mdLine {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	raw := strings.Split(content, "\n")

	lines := make([]mdLine, 0, len(raw))
	fence := 0
	for _, text := range raw {
		trimmed := strings.TrimSpace(text)
		switch {
		case fence > 0:
			if n := backtickRun(trimmed); n >= fence && n == len(trimmed) {
				fence = 0
			}
			lines = append(lines, mdLine{text: text, code: true})
		case backtickRun(trimmed) >= 3:
			fence = backtickRun(trimmed)
			lines = append(lines, mdLine{text: text, code: true})
		default:
			lines = append(lines, mdLine{text: text})
		}
	}
	return lines
}

func joinLines(lines []mdLine) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	return strings.Join(texts, "\n")
}

// backtickRun counts the leading backticks of s.
func backtickRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// lineCleaner applies a per-line rewrite to every prose line and, when
// code is set, to code lines too. A rewrite may split a line into several.
type lineCleaner struct {
	name    string
	code    bool
	rewrite func(string) []string
}

func (c *lineCleaner) Clean(content string) (string, error) {
	lines := splitLines(content)
	out := make([]mdLine, 0, len(lines))
	for _, l := range lines {
		if l.code && !c.code {
			out = append(out, l)
			continue
		}
		for _, text := range c.rewrite(l.text) {
			out = append(out, mdLine{text: text, code: l.code})
		}
	}
	return joinLines(out), nil
}

func (c *lineCleaner) Name() string {
	return c.name
}
