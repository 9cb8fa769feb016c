package report

import (
	"io"

	"github.com/nao1215/markdown"

	"github.com/nao1215/anonyreport/internal/model"
)

// MarkdownWriter outputs receipts and region listings as Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteReceipt outputs the receipt as a Markdown document.
func (w *MarkdownWriter) WriteReceipt(receipt Receipt) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Comprobante de envío")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Propiedad", "Valor"},
		Rows: [][]string{
			{"Enviado", receipt.SubmittedAt.Format(timeLayout)},
			{"Huella SHA3-256", "`" + receipt.Digest + "`"},
			{"Canal", receipt.Record.SourceChannel},
		},
	})
	md.PlainText("")

	md.H2("Respuestas")
	md.PlainText("")

	lines := receipt.Lines()
	if len(lines) == 0 {
		md.PlainText("Sin respuestas.")
	} else {
		rows := make([][]string, len(lines))
		for i, line := range lines {
			rows[i] = []string{line.Question, line.Answer}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Pregunta", "Respuesta"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.Note("La huella permite comprobar el registro enviado sin revelar tu identidad.")
	md.PlainText("")

	return len(md.String()), md.Build()
}

// WriteRegions outputs one section per department and one bullet list of
// districts per province.
func (w *MarkdownWriter) WriteRegions(regions []model.RegionNode) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Ubigeo")
	md.PlainText("")

	if !hasChildren(regions) {
		names := make([]string, len(regions))
		for i, r := range regions {
			names[i] = r.Name
		}
		md.BulletList(names...)
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	for _, dep := range regions {
		md.H2(dep.Name)
		md.PlainText("")
		for _, prov := range dep.Children {
			md.H3(prov.Name)
			md.PlainText("")
			if len(prov.Children) == 0 {
				continue
			}
			districts := make([]string, len(prov.Children))
			for i, d := range prov.Children {
				districts[i] = d.Name
			}
			md.BulletList(districts...)
			md.PlainText("")
		}
	}

	return len(md.String()), md.Build()
}

// hasChildren reports whether any node has loaded children.
func hasChildren(nodes []model.RegionNode) bool {
	for _, n := range nodes {
		if len(n.Children) > 0 {
			return true
		}
	}
	return false
}
