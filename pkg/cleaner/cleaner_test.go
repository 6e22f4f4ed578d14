package cleaner

import (
	"errors"
	"strings"
	"testing"
)

// --- NoopCleaner Tests ---

func TestNoopCleaner_Clean(t *testing.T) {
	c := NewNoop()

	tests := []struct {
		name  string
		input string
	}{
		{"empty_string", ""},
		{"plain_text", "Hello, World!"},
		{"markdown", "# Title\n\n\n\n- item"},
		{"whitespace", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Clean(tt.input)
			if err != nil {
				t.Errorf("Clean() error = %v, want nil", err)
			}
			if got != tt.input {
				t.Errorf("Clean() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestNoopCleaner_Name(t *testing.T) {
	c := NewNoop()
	if got := c.Name(); got != "noop" {
		t.Errorf("Name() = %q, want %q", got, "noop")
	}
}

// --- ChainCleaner Tests ---

func TestChainCleaner_Empty(t *testing.T) {
	c := NewChain()

	input := "unchanged content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

func TestChainCleaner_SingleCleaner(t *testing.T) {
	c := NewChain(NewNoop())

	input := "test content"
	got, err := c.Clean(input)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != input {
		t.Errorf("Clean() = %q, want %q", got, input)
	}
}

func TestChainCleaner_AppliesInOrder(t *testing.T) {
	c := NewChain(NewBulletNormalizer(), NewBlankLineCollapser())

	got, err := c.Clean("- a\n\n\n\n- b")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if got != "* a\n\n* b" {
		t.Errorf("Clean() = %q, want %q", got, "* a\n\n* b")
	}
}

// errorCleaner is a test cleaner that always returns an error
type errorCleaner struct{}

func (c *errorCleaner) Clean(string) (string, error) {
	return "", errors.New("test error")
}

func (c *errorCleaner) Name() string {
	return "error"
}

func TestChainCleaner_ErrorPropagation(t *testing.T) {
	c := NewChain(NewNoop(), &errorCleaner{}, NewMarkdown())

	_, err := c.Clean("test")
	if err == nil {
		t.Fatal("expected error to propagate")
	}

	if !strings.Contains(err.Error(), "test error") {
		t.Errorf("expected error containing 'test error', got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "error: ") {
		t.Errorf("expected the failing stage to be named, got %v", err)
	}
}

func TestChainCleaner_Name(t *testing.T) {
	tests := []struct {
		name     string
		cleaners []Cleaner
		want     string
	}{
		{"empty", []Cleaner{}, "chain()"},
		{"single", []Cleaner{NewNoop()}, "chain(noop)"},
		{"double", []Cleaner{NewNoop(), NewMarkdown()}, "chain(noop->markdown)"},
		{"rules", []Cleaner{NewLinkDefanger(), NewHeaderBreaker()}, "chain(defang->headers)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChain(tt.cleaners...)
			if got := c.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Option Tests ---

func TestWithBase64Placeholder(t *testing.T) {
	cfg := &markdownConfig{}
	WithBase64Placeholder("[img]")(cfg)

	if cfg.Placeholder != "[img]" {
		t.Errorf("Placeholder = %q, want [img]", cfg.Placeholder)
	}
}

func TestWithDefangLinks(t *testing.T) {
	cfg := &markdownConfig{DefangLinks: true}
	WithDefangLinks(false)(cfg)

	if cfg.DefangLinks {
		t.Error("WithDefangLinks(false) did not unset DefangLinks")
	}
}
