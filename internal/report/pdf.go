// Package report renders the printable PDF summary of a dataset.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/parshv1234/ChemicalVisualizer/internal/core"
)

// Page geometry in points, measured from the top-left corner of a US Letter page.
const (
	pageHeight   = 792.0
	leftMargin   = 100.0
	indent       = 120.0
	ruleEnd      = 500.0
	bottomMargin = 742.0
	lineStep     = 15.0
	topLine      = 42.0
)

// Filename is the suggested download name for the report of dataset id.
func Filename(id string) string {
	return fmt.Sprintf("report_%s.pdf", id)
}

// Renderer writes dataset reports as PDF. It has no state and is safe for
// concurrent use.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Filename implements core.ReportRenderer.
func (r *Renderer) Filename(id string) string {
	return Filename(id)
}

// Render writes the report for ds to w. Nothing is written when ds is
// incomplete; the error is a *core.RenderError.
func (r *Renderer) Render(w io.Writer, ds *core.Dataset) error {
	if err := checkDataset(ds); err != nil {
		return err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(ds.UploadedAt)
	pdf.SetTitle(fmt.Sprintf("Chemical Equipment Report - ID %s", ds.ID), true)
	pdf.SetAutoPageBreak(false, 0)
	tr := cp1252(pdf.UnicodeTranslatorFromDescriptor(""))

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(leftMargin, fromBottom(750), tr(fmt.Sprintf("Chemical Equipment Report - ID %s", ds.ID)))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(leftMargin, fromBottom(730), "Uploaded: "+ds.UploadedAt.UTC().Format("2006-01-02 15:04:05"))

	pdf.Line(leftMargin, fromBottom(720), ruleEnd, fromBottom(720))

	pdf.Text(leftMargin, fromBottom(700), "Summary Statistics:")
	pdf.Text(indent, fromBottom(680), fmt.Sprintf("Total Equipment Count: %d", ds.TotalCount))
	pdf.Text(indent, fromBottom(665), fmt.Sprintf("Avg Flowrate: %.2f", ds.AvgFlowrate))
	pdf.Text(indent, fromBottom(650), fmt.Sprintf("Avg Pressure: %.2f", ds.AvgPressure))
	pdf.Text(indent, fromBottom(635), fmt.Sprintf("Avg Temperature: %.2f", ds.AvgTemperature))

	pdf.Text(leftMargin, fromBottom(600), "Equipment Type Distribution:")

	y := fromBottom(580)
	for _, tc := range ds.TypeDistribution.Sorted() {
		if y > bottomMargin {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", 12)
			y = topLine
		}
		pdf.Text(indent, y, tr(fmt.Sprintf("- %s: %d", tc.Label, tc.Count)))
		y += lineStep
	}

	if err := pdf.Error(); err != nil {
		return &core.RenderError{DatasetID: ds.ID, Reason: "layout", Err: err}
	}
	if err := pdf.Output(w); err != nil {
		return &core.RenderError{DatasetID: ds.ID, Reason: "write document", Err: err}
	}
	return nil
}

// cp1252 wraps the core font translator so that runes outside code page 1252
// are spelled as <U+XXXX> instead of collapsing to '.'. Labels that differ
// only in such runes stay distinguishable in the report.
func cp1252(tr func(string) string) func(string) string {
	return func(s string) string {
		var b strings.Builder
		for _, r := range s {
			enc := tr(string(r))
			if enc == "." && r != '.' {
				fmt.Fprintf(&b, "<U+%04X>", r)
				continue
			}
			b.WriteString(enc)
		}
		return b.String()
	}
}

// fromBottom converts a baseline measured from the page bottom.
func fromBottom(y float64) float64 {
	return pageHeight - y
}

func checkDataset(ds *core.Dataset) error {
	if ds == nil {
		return &core.RenderError{Reason: "dataset is nil"}
	}

	var reason string
	switch {
	case ds.ID == "":
		reason = "dataset has no id"
	case ds.UploadedAt.IsZero():
		reason = "dataset has no upload time"
	case ds.TypeDistribution == nil:
		reason = "dataset has no type distribution"
	case ds.TypeDistribution.Total() != ds.TotalCount:
		reason = fmt.Sprintf("type distribution counts %d rows, total count is %d",
			ds.TypeDistribution.Total(), ds.TotalCount)
	default:
		return nil
	}
	return &core.RenderError{DatasetID: ds.ID, Reason: reason}
}
