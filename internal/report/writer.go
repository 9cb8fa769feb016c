package report

import (
	"errors"
	"io"
	"time"

	"github.com/nao1215/anonyreport/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Output format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Receipt is the local proof of an accepted submission.
type Receipt struct {
	// Record is the submitted record. Its token is never written out.
	Record model.SubmissionRecord

	// Digest is the hex SHA3-256 digest of the record's JSON encoding.
	Digest string

	// SubmittedAt is when the backend accepted the record.
	SubmittedAt time.Time
}

// AnswerLine is one answered question of a receipt.
type AnswerLine struct {
	Field    model.Field
	Question string
	Answer   string
}

// Lines returns the answered questions in questionnaire order, with
// option labels instead of stored values. Location fields come last.
func (r Receipt) Lines() []AnswerLine {
	var lines []AnswerLine
	for _, step := range model.Steps() {
		q, ok := model.QuestionFor(step)
		if !ok {
			continue
		}
		for _, g := range q.Groups {
			value, ok := r.Record.Answer(g.Field)
			if !ok {
				continue
			}
			question := q.Prompt
			if g.Label != "" {
				question = g.Label
			}
			lines = append(lines, AnswerLine{
				Field:    g.Field,
				Question: question,
				Answer:   q.LabelFor(g.Field, value),
			})
		}
	}
	return lines
}

// Writer renders receipts and region listings.
type Writer interface {
	// WriteReceipt outputs the receipt of an accepted submission.
	// Returns the number of bytes written and any error encountered.
	WriteReceipt(receipt Receipt) (int, error)

	// WriteRegions outputs a region hierarchy.
	WriteRegions(regions []model.RegionNode) (int, error)
}

// NewWriter returns the writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// MultiWriter writes to multiple Writers, for example the terminal and a
// receipt file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteReceipt outputs the receipt to all Writers, stopping on the first error.
func (m *MultiWriter) WriteReceipt(receipt Receipt) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteReceipt(receipt)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRegions outputs the regions to all Writers, stopping on the first error.
func (m *MultiWriter) WriteRegions(regions []model.RegionNode) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRegions(regions)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is how receipt times are shown to people.
const timeLayout = "2006-01-02 15:04:05 MST"
