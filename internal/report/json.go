package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/anonyreport/internal/model"
)

// JSONWriter outputs receipts and region listings as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReceipt is the JSON form of a Receipt.
// Answers are keyed by field name and hold stored values, not labels.
type JSONReceipt struct {
	SubmittedAt   time.Time         `json:"submittedAt"`
	Digest        string            `json:"digest"`
	DateBucket    string            `json:"dateBucket"`
	SourceChannel string            `json:"sourceChannel"`
	Answers       map[string]string `json:"answers"`
}

// NewJSONReceipt converts a receipt, dropping the session token.
func NewJSONReceipt(receipt Receipt) JSONReceipt {
	answers := make(map[string]string)
	for _, f := range append(model.AnswerFields(), model.LocationFields()...) {
		if v, ok := receipt.Record.Answer(f); ok {
			answers[f.String()] = v
		}
	}

	return JSONReceipt{
		SubmittedAt:   receipt.SubmittedAt.UTC(),
		Digest:        receipt.Digest,
		DateBucket:    receipt.Record.DateBucket,
		SourceChannel: receipt.Record.SourceChannel,
		Answers:       answers,
	}
}

// WriteReceipt outputs the receipt as a JSONReceipt.
func (w *JSONWriter) WriteReceipt(receipt Receipt) (int, error) {
	return w.writeJSON(NewJSONReceipt(receipt))
}

// WriteRegions outputs the region hierarchy.
func (w *JSONWriter) WriteRegions(regions []model.RegionNode) (int, error) {
	if regions == nil {
		regions = []model.RegionNode{}
	}
	return w.writeJSON(regions)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
