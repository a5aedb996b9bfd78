package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFRenderer lays the dataset out as a single A4 table with shaded
// alternate rows and a row count under it.
type PDFRenderer struct{}

func (PDFRenderer) Render(data Dataset) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetTitle(data.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	width := pageWidth / float64(len(data.Columns))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	for _, col := range data.Columns {
		pdf.CellFormat(width, 8, tr(col), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(245, 245, 245)
	for n, row := range data.Rows {
		for i := range data.Columns {
			pdf.CellFormat(width, 7, tr(data.cell(row, i)), "1", 0, "L", n%2 == 1, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d row(s)", len(data.Rows)), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
