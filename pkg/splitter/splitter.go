// Package splitter divides a Markdown document into chunks that fit a
// delivery size limit without breaking any line.
package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the default chunk budget in characters.
const DefaultMaxChunkSize = 100000

// Chunk is one piece of a split document.
type Chunk struct {
	Index   int    // 1-based
	Total   int    // number of chunks in the document
	Content string // chunk body, without header
}

// Header returns the part header for multi-part documents, or "" when the
// document fits in one chunk.
func (c Chunk) Header() string {
	if c.Total < 2 {
		return ""
	}
	return fmt.Sprintf("# Part %d of %d\n\n", c.Index, c.Total)
}

// String returns the chunk as written to disk: header, then body.
func (c Chunk) String() string {
	return c.Header() + c.Content
}

// Split divides doc into chunks of at most maxSize characters. A document
// within budget is returned unmodified as a single chunk. Otherwise lines
// are packed greedily, and a chunk body is its lines joined by "\n". A
// single line longer than maxSize becomes its own oversized chunk rather
// than being cut. maxSize <= 0 uses DefaultMaxChunkSize.
func Split(doc string, maxSize int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if utf8.RuneCountInString(doc) <= maxSize {
		return []Chunk{{Index: 1, Total: 1, Content: doc}}
	}

	var (
		bodies  []string
		current []string
		size    int
	)
	for _, line := range strings.Split(doc, "\n") {
		n := utf8.RuneCountInString(line)
		if len(current) > 0 && size+1+n > maxSize {
			bodies = append(bodies, strings.Join(current, "\n"))
			current, size = nil, 0
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, line)
		size += n
	}
	if len(current) > 0 {
		bodies = append(bodies, strings.Join(current, "\n"))
	}

	chunks := make([]Chunk, len(bodies))
	for i, body := range bodies {
		chunks[i] = Chunk{Index: i + 1, Total: len(bodies), Content: body}
	}
	return chunks
}

// Join reassembles chunk bodies into the document they were split from.
func Join(chunks []Chunk) string {
	bodies := make([]string, len(chunks))
	for i, c := range chunks {
		bodies[i] = c.Content
	}
	return strings.Join(bodies, "\n")
}
