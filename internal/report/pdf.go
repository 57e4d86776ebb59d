package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// PDF renders an A4 page with a bold title and one multi-line cell per
// insight line.
type PDF struct{}

// Render writes the PDF document to w.
func (PDF) Render(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.title()), "", 1, "", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(10)
	for _, line := range r.Insight.Lines {
		pdf.MultiCell(0, 10, tr(line.Text), "", "", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf report: %w", err)
	}
	return nil
}

// ContentType returns the MIME type.
func (PDF) ContentType() string { return "application/pdf" }

// Extension returns the file extension.
func (PDF) Extension() string { return ".pdf" }
