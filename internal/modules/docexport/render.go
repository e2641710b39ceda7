package docexport

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const bannerImage = "cover-banner"

type fpdfMeasurer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (m fpdfMeasurer) StringWidth(f Font, s string) float64 {
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}

// Render lays doc out and writes it as a PDF. The output is stable for a
// given document and timestamp.
func Render(doc Document, stamp time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Study Material: "+doc.Topic, true)
	pdf.SetCreator("studyforge", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := Layout(doc, fpdfMeasurer{pdf: pdf, tr: tr})
	for _, page := range pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			if err := drawOp(pdf, tr, op); err != nil {
				return nil, err
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOp(pdf *fpdf.Fpdf, tr func(string) string, op Op) error {
	switch op.Kind {
	case OpBanner:
		var title, subtitle string
		if len(op.Lines) > 0 {
			title = op.Lines[0]
		}
		if len(op.Lines) > 1 {
			subtitle = op.Lines[1]
		}
		png, err := renderBanner(op.W, op.H, op.Fill, title, subtitle)
		if err != nil {
			return err
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(bannerImage, opts, bytes.NewReader(png))
		pdf.ImageOptions(bannerImage, op.X, op.Y, op.W, op.H, false, opts, 0, "")
	case OpRect:
		pdf.SetFillColor(op.Fill.R, op.Fill.G, op.Fill.B)
		style := "F"
		if op.Stroke {
			pdf.SetDrawColor(op.Edge.R, op.Edge.G, op.Edge.B)
			pdf.SetLineWidth(0.3)
			style = "FD"
		}
		pdf.Rect(op.X, op.Y, op.W, op.H, style)
	case OpText:
		pdf.SetFont(op.Font.Family, op.Font.Style, op.Font.Size)
		pdf.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		pdf.Text(op.X, op.Y, tr(op.Text))
	}
	return nil
}
