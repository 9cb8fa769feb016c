package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/anonyreport/internal/model"
)

// SimpleWriter outputs plain text for the terminal.
type SimpleWriter struct {
	baseWriter

	// showDigest controls whether the record digest is printed.
	showDigest bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithDigest configures whether the record digest is printed.
func WithDigest(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showDigest = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showDigest: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteReceipt outputs the receipt in human-readable format.
func (w *SimpleWriter) WriteReceipt(receipt Receipt) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      COMPROBANTE DE ENVÍO\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Enviado:  %s\n", receipt.SubmittedAt.Format(timeLayout)))
	if w.showDigest {
		sb.WriteString(fmt.Sprintf("Huella:   %s\n", receipt.Digest))
	}
	sb.WriteString("\n")

	lines := receipt.Lines()
	if len(lines) == 0 {
		sb.WriteString("(sin respuestas)\n")
	}
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("- %s\n    %s\n", line.Question, line.Answer))
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\nGracias. Tu respuesta es anónima.\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteRegions outputs the hierarchy as an indented tree.
func (w *SimpleWriter) WriteRegions(regions []model.RegionNode) (int, error) {
	var sb strings.Builder
	writeTree(&sb, regions, 0)
	return w.output.Write([]byte(sb.String()))
}

// writeTree writes one line per node, indenting children two spaces.
func writeTree(sb *strings.Builder, nodes []model.RegionNode, depth int) {
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Name)
		sb.WriteString("\n")
		writeTree(sb, n.Children, depth+1)
	}
}
