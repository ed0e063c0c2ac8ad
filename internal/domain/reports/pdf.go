package reports

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
)

// RenderPDF renders a generated report to a PDF document.
func RenderPDF(rep Report) ([]byte, error) {
	if rep.Status != StatusGenerated || rep.GeneratedData == nil {
		return nil, ErrNotGenerated
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, rep.Name)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Type: %s", rep.Type))
	pdf.Ln(6)
	if rep.GeneratedAt != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format("2006-01-02 15:04 MST")))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	writePDFValue(pdf, "", rep.GeneratedData, 0)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePDFValue walks the decoded JSON payload and prints one line per leaf.
func writePDFValue(pdf *gofpdf.Fpdf, label string, value any, depth int) {
	indent := float64(depth * 5)

	line := func(text string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.SetX(pdf.GetX() + indent)
		pdf.Cell(0, 6, text)
		pdf.Ln(5)
	}

	switch v := value.(type) {
	case map[string]any:
		if label != "" {
			line(label, true)
		}
		for _, key := range sortedKeys(v) {
			writePDFValue(pdf, key, v[key], depth+1)
		}
	case []any:
		if label != "" {
			line(fmt.Sprintf("%s (%d)", label, len(v)), true)
		}
		for i, item := range v {
			writePDFValue(pdf, fmt.Sprintf("#%d", i+1), item, depth+1)
		}
	case float64:
		line(fmt.Sprintf("%s: %v", label, v), false)
	case nil:
		line(fmt.Sprintf("%s: -", label), false)
	default:
		line(fmt.Sprintf("%s: %v", label, v), false)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
