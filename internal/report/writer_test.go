package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/anonyreport/internal/model"
)

const testToken = "7f1c2a9e-3c1d-4f3e-9a55-0c2f8f0b1d11"

// createTestReceipt creates a receipt for a past victim who filed no report.
func createTestReceipt() Receipt {
	answers := model.NewAnswerSet()
	answers.Set(model.FieldVictim, model.VictimPast)
	answers.Set(model.FieldReported, model.No)
	answers.Set(model.FieldDepartment, "AYACUCHO")
	answers.Set(model.FieldProvince, "HUAMANGA")
	answers.Set(model.FieldDistrict, "AYACUCHO")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := model.NewSubmissionRecord(answers, model.NewSession(testToken, at.Add(-5*time.Minute)), at)

	return Receipt{
		Record:      record,
		Digest:      strings.Repeat("ab", 32),
		SubmittedAt: at,
	}
}

// testRegions returns a two-level hierarchy.
func testRegions() []model.RegionNode {
	return []model.RegionNode{
		{Name: "AYACUCHO", Children: []model.RegionNode{
			{Name: "HUAMANGA", Children: []model.RegionNode{{Name: "AYACUCHO"}, {Name: "CARMEN ALTO"}}},
		}},
		{Name: "LIMA", Children: []model.RegionNode{
			{Name: "LIMA", Children: []model.RegionNode{{Name: "MIRAFLORES"}}},
		}},
	}
}

// TestReceiptLines tests answer ordering and labels.
func TestReceiptLines(t *testing.T) {
	t.Parallel()

	lines := createTestReceipt().Lines()
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Field != model.FieldVictim || lines[0].Answer != "Sí, en el pasado" {
		t.Errorf("expected the victim label first, got %+v", lines[0])
	}
	last := lines[len(lines)-1]
	if last.Field != model.FieldDistrict || last.Question != "Distrito" || last.Answer != "AYACUCHO" {
		t.Errorf("expected the district last, got %+v", last)
	}
}

// TestSimpleWriter tests the plain text writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes receipt without the token", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteReceipt(createTestReceipt())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{"COMPROBANTE", strings.Repeat("ab", 32), "Sí, en el pasado", "HUAMANGA"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, testToken) {
			t.Error("receipt must not contain the session token")
		}
	})

	t.Run("digest can be hidden", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithDigest(false)).WriteReceipt(createTestReceipt()); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), strings.Repeat("ab", 32)) {
			t.Error("expected digest to be hidden")
		}
	})

	t.Run("writes region tree", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteRegions(testRegions()); err != nil {
			t.Fatal(err)
		}
		want := "AYACUCHO\n  HUAMANGA\n    AYACUCHO\n    CARMEN ALTO\nLIMA\n  LIMA\n    MIRAFLORES\n"
		if buf.String() != want {
			t.Errorf("unexpected tree:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes receipt", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteReceipt(createTestReceipt()); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), testToken) {
			t.Error("receipt must not contain the session token")
		}

		var got JSONReceipt
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Answers["esVictima"] != model.VictimPast || got.Answers["distrito"] != "AYACUCHO" {
			t.Errorf("unexpected answers %v", got.Answers)
		}
		if _, ok := got.Answers["rubro"]; ok {
			t.Error("unanswered fields must be omitted")
		}
		if got.SourceChannel != model.SourceChannel {
			t.Errorf("unexpected source channel %q", got.SourceChannel)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteRegions(testRegions()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("nil regions is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteRegions(nil); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "[]\n" {
			t.Errorf("expected [], got %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes receipt", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteReceipt(createTestReceipt()); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		for _, want := range []string{"# Comprobante de envío", "## Respuestas", "Sí, en el pasado"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, testToken) {
			t.Error("receipt must not contain the session token")
		}
	})

	t.Run("writes nested regions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteRegions(testRegions()); err != nil {
			t.Fatal(err)
		}

		output := buf.String()
		for _, want := range []string{"## AYACUCHO", "### HUAMANGA", "- CARMEN ALTO", "- MIRAFLORES"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("writes flat list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteRegions([]model.RegionNode{{Name: "CUSCO"}, {Name: "PIURA"}}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "- CUSCO") || strings.Contains(buf.String(), "## CUSCO") {
			t.Errorf("expected a bullet list, got:\n%s", buf.String())
		}
	})
}

// TestNewWriter tests format selection.
func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		format string
		check  func(Writer) bool
	}{
		{FormatText, func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{"", func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{FormatJSON, func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{FormatMarkdown, func(w Writer) bool { _, ok := w.(*MarkdownWriter); return ok }},
	}
	for _, tt := range tests {
		w, err := NewWriter(tt.format, &buf)
		if err != nil {
			t.Fatalf("NewWriter(%q): %v", tt.format, err)
		}
		if !tt.check(w) {
			t.Errorf("NewWriter(%q) returned %T", tt.format, w)
		}
	}

	if _, err := NewWriter("xml", &buf); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

	n, err := m.WriteReceipt(createTestReceipt())
	if err != nil {
		t.Fatal(err)
	}
	if n != text.Len()+js.Len() {
		t.Errorf("expected total %d, got %d", text.Len()+js.Len(), n)
	}
	if text.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive the receipt")
	}

	text.Reset()
	js.Reset()
	if _, err := m.WriteRegions(testRegions()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text.String(), "MIRAFLORES") || !strings.Contains(js.String(), "MIRAFLORES") {
		t.Error("expected both writers to receive the regions")
	}
}
