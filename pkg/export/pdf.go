package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Report holds the fields printed on a verified issue report.
type Report struct {
	IssueID     string
	Category    string
	Description string
	AreaName    string
	Longitude   float64
	Latitude    float64
	Status      string
	Votes       int
	Likes       int
	Score       int
	Verified    bool
	ReportedAt  string
}

// PDFExporter renders a verified issue report as a PDF document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the report document. The caller is responsible for the
// export gate; this renderer prints whatever it is given.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	if report.IssueID == "" {
		return nil, fmt.Errorf("pdf report requires an issue id")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper("verified civic issue report"), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	rows := [][2]string{
		{"Issue ID", report.IssueID},
		{"Category", report.Category},
		{"Area", report.AreaName},
		{"Coordinates", fmt.Sprintf("%.6f, %.6f", report.Longitude, report.Latitude)},
		{"Status", report.Status},
		{"Votes", fmt.Sprintf("%d", report.Votes)},
		{"Likes", fmt.Sprintf("%d", report.Likes)},
		{"Priority score", fmt.Sprintf("%d", report.Score)},
		{"Verified", fmt.Sprintf("%t", report.Verified)},
		{"Reported at", report.ReportedAt},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(140, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, "Description", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(190, 6, report.Description, "1", "", false)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
