package sanitizer

import (
	"fmt"
	"sort"
	"strings"
)

// Stats captures what a sanitize pass removed or rewrote.
type Stats struct {
	InputBytes        int            `json:"input_bytes"`
	OutputBytes       int            `json:"output_bytes"`
	ElementsRemoved   map[string]int `json:"elements_removed"` // tag -> count
	AttributesRemoved int            `json:"attributes_removed"`
	CellsFilled       int            `json:"cells_filled"`
	CodeBlocks        int            `json:"code_blocks"`
}

// NewStats creates a Stats with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
	}
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// String returns a one-line summary suitable for debug logs.
func (s *Stats) String() string {
	tags := make([]string, 0, len(s.ElementsRemoved))
	for tag := range s.ElementsRemoved {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
	}

	return fmt.Sprintf("size %d -> %d bytes; removed [%s]; attrs=%d cells=%d code=%d",
		s.InputBytes, s.OutputBytes, strings.Join(parts, " "),
		s.AttributesRemoved, s.CellsFilled, s.CodeBlocks)
}
