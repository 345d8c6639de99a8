package report

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Column widths in millimetres; they sum to the A4 printable width at 15mm margins.
var pdfWidths = []float64{80, 35, 35, 30}

const (
	pdfMargin     = 15.0
	pdfRowHeight  = 7.0
	pdfTimeLayout = "2006-01-02 15:04 MST"
)

type pdfWriter struct{}

func (pdfWriter) ContentType() string { return "application/pdf" }
func (pdfWriter) Extension() string   { return "pdf" }

func (pdfWriter) Write(ctx context.Context, w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(r.Title, true)
	// Core fonts are cp1252; names outside it degrade instead of failing.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			subtitle := fmt.Sprintf("Minimum duration: %s min    Generated: %s",
				minutes(r.Threshold), r.GeneratedAt.Format(pdfTimeLayout))
			pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
			pdf.Ln(4)
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range Columns {
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin + 5)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, row := range r.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i, c := range cells(row) {
			align := "L"
			if i == len(pdfWidths)-1 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: pdf: %w", ErrRender, err)
	}
	return nil
}
