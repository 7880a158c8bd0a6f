package reports

import (
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"academic-analytics/report-backend/internal/reports/export"
)

const (
	reportTitle      = "ACADEMIC REPORT"
	bannerDateFormat = "02 January, 2006"

	DefaultProductLabel = "ACADEMIC ANALYTICS SUITE"
	DefaultAttribution  = "Powered by Karim Dev"
)

var bannerDateColor = export.PDFColor{R: 220, G: 221, B: 225} // #dcdde1

// Branding holds the page furniture text and colors
type Branding struct {
	Primary      export.PDFColor
	Secondary    export.PDFColor
	ProductLabel string
	Attribution  string
}

// DefaultBranding returns the standard report palette and labels
func DefaultBranding() Branding {
	opts := export.DefaultPDFOptions()
	return Branding{
		Primary:      opts.PrimaryColor,
		Secondary:    opts.AccentColor,
		ProductLabel: DefaultProductLabel,
		Attribution:  DefaultAttribution,
	}
}

// academicDecorator draws the header banner, grade badge and footer.
// The same drawing is applied to the first and every later page.
func academicDecorator(b Branding, totalAvg float64, classification string, date time.Time) export.PageDecorator {
	score := formatScore(totalAvg)
	performance := "PERFORMANCE: " + strings.ToUpper(classification)
	dateLine := date.Format(bannerDateFormat)

	return func(c *export.Canvas) {
		w, h := c.PageSize()

		// slanted banner
		c.SetFillColor(b.Primary)
		c.Polygon([]gofpdf.PointType{
			{X: 0, Y: 0},
			{X: w, Y: 0},
			{X: w, Y: 140},
			{X: 0, Y: 100},
		}, "F")

		c.SetTextColor(export.White)
		c.SetFont("B", 24)
		c.DrawRightString(w-40, 50, reportTitle)
		c.SetFont("", 10)
		c.SetTextColor(bannerDateColor)
		c.DrawRightString(w-40, 65, dateLine)

		// footer
		c.SetStrokeColor(b.Secondary)
		c.SetLineWidth(2)
		c.Line(50, h-50, w-50, h-50)
		c.SetFont("B", 8)
		c.SetTextColor(export.Gray)
		c.DrawString(50, h-35, b.ProductLabel)
		c.DrawRightString(w-50, h-35, b.Attribution)

		// grade badge
		cx, cy := w/2, 160.0
		c.SetStrokeColor(b.Secondary)
		c.SetLineWidth(3)
		c.SetFillColor(export.White)
		c.Circle(cx, cy, 60, "FD")
		c.SetFillColor(b.Primary)
		c.Circle(cx, cy, 52, "F")

		c.SetTextColor(export.White)
		c.SetFont("B", 26)
		c.DrawCentredString(cx, cy-6, score)
		c.SetFont("", 10)
		c.DrawCentredString(cx, cy+15, "/ 20")

		c.SetTextColor(b.Secondary)
		c.SetFont("B", 14)
		c.DrawCentredString(cx, cy+85, performance)
	}
}
