package render

import (
	"strings"
	"testing"

	"github.com/jmylchreest/scrapemd/pkg/dom"
	"github.com/jmylchreest/scrapemd/pkg/sanitizer"
)

func render(t *testing.T, markup, sourceURL string) string {
	t.Helper()
	snap, err := dom.Parse(markup, sourceURL)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	m, err := sanitizer.New(nil).Sanitize(snap)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	out, err := New().Render(m)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return out
}

func TestRender_Basics(t *testing.T) {
	out := render(t, `<html><head><title>Ignored</title></head><body>
<h2>Section</h2>
<p>Some <strong>bold</strong> and <em>italic</em> text with <code>inline()</code>.</p>
<ul><li>one</li><li>two</li></ul>
<p><a href="https://example.com/x">link</a></p>
</body></html>`, "")

	checks := []string{
		"## Section",
		"**bold**",
		"`inline()`",
		"* one",
		"* two",
		"[link](https://example.com/x)",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Ignored") {
		t.Errorf("head content leaked into the body:\n%s", out)
	}
}

func TestRender_EmptyCellKeepsColumn(t *testing.T) {
	out := render(t, `<html><head><title>Hi</title></head><body><h1>Hi</h1><p>Hello   world</p>`+
		`<table><tr><td></td><td>x</td></tr></table></body></html>`, "")

	// The filled cell is a single space, padded to the column width.
	want := "|   |   |\n|---|---|\n|   | x |"
	if !strings.Contains(out, want) {
		t.Errorf("table not rendered as\n%s\ngot:\n%s", want, out)
	}
}

func TestRender_RestoresCodeVerbatim(t *testing.T) {
	out := render(t, `<html><body><p>before</p>
<pre><code class="language-python">x = a * b_c
print("*not emphasis*")
</code></pre><p>after</p></body></html>`, "")

	want := "```python\nx = a * b_c\nprint(\"*not emphasis*\")\n```"
	if !strings.Contains(out, want) {
		t.Errorf("output missing fenced block %q:\n%s", want, out)
	}
	if strings.Contains(out, "scrapemdcodeblock") {
		t.Errorf("placeholder left in output:\n%s", out)
	}
}

func TestRender_ResolvesRelativeLinks(t *testing.T) {
	out := render(t, `<html><body><p><a href="/docs/intro">intro</a></p></body></html>`,
		"https://example.com/some/page")

	if !strings.Contains(out, "[intro](https://example.com/docs/intro)") {
		t.Errorf("relative link not resolved:\n%s", out)
	}
}

func TestRender_Deterministic(t *testing.T) {
	page := `<html><body><h1>T</h1><table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td></td></tr></table></body></html>`
	first := render(t, page, "https://example.com/")
	for i := 0; i < 5; i++ {
		if got := render(t, page, "https://example.com/"); got != first {
			t.Fatalf("run %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://example.com/a/b?c=d", "https://example.com"},
		{"http://localhost:8080/x", "http://localhost:8080"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := domainOf(tt.in); got != tt.want {
			t.Errorf("domainOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
