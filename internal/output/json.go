package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes JSON output.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []any
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
	}
}

// Write buffers a value.
func (w *JSONWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// Flush writes the buffered values followed by a newline. A single value is
// written as is; several are written as an array.
func (w *JSONWriter) Flush() error {
	var v any = w.items
	if len(w.items) == 1 {
		v = w.items[0]
	}

	output, err := w.marshal(v)
	if err != nil {
		return err
	}
	w.items = w.items[:0]

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONWriter) marshal(v any) ([]byte, error) {
	if w.pretty {
		return json.MarshalIndent(v, "", w.indent)
	}
	return json.Marshal(v)
}
