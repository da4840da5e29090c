package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/scidigest/internal/model"
)

// JSONWriter outputs item collections as a JSON array. The output is UTF-8
// with HTML escaping disabled, so URLs and summaries read naturally in the
// file.
type JSONWriter struct {
	// output receives the encoded array.
	output io.Writer

	// indent enables pretty-printed output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output with the given prefix and
// per-level indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes the items and returns the number of bytes written.
// A nil slice encodes as an empty array, never null.
func (w *JSONWriter) Write(items []model.Item) (int, error) {
	if items == nil {
		items = []model.Item{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(items); err != nil {
		return 0, err
	}

	n, err := w.output.Write(buf.Bytes())
	return n, err
}
