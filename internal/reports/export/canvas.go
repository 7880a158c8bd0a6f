package export

import "github.com/jung-kurt/gofpdf"

// Canvas exposes absolute drawing on the current page to a PageDecorator.
// Coordinates are in points from the top-left corner; text is placed on its
// baseline.
type Canvas struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

// PageSize returns the page width and height
func (c *Canvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

// PageNo returns the current page number
func (c *Canvas) PageNo() int {
	return c.pdf.PageNo()
}

func (c *Canvas) SetFillColor(col PDFColor)   { c.pdf.SetFillColor(col.R, col.G, col.B) }
func (c *Canvas) SetStrokeColor(col PDFColor) { c.pdf.SetDrawColor(col.R, col.G, col.B) }
func (c *Canvas) SetTextColor(col PDFColor)   { c.pdf.SetTextColor(col.R, col.G, col.B) }
func (c *Canvas) SetLineWidth(w float64)      { c.pdf.SetLineWidth(w) }

// SetFont selects the document font family with the given style ("", "B")
func (c *Canvas) SetFont(style string, size float64) {
	c.pdf.SetFont(c.family, style, size)
}

// Polygon draws a closed path; style is "F", "D" or "FD"
func (c *Canvas) Polygon(points []gofpdf.PointType, style string) {
	c.pdf.Polygon(points, style)
}

// Circle draws a circle centered on (x, y)
func (c *Canvas) Circle(x, y, r float64, style string) {
	c.pdf.Circle(x, y, r, style)
}

func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

// DrawString draws s starting at x
func (c *Canvas) DrawString(x, y float64, s string) {
	c.pdf.Text(x, y, c.tr(s))
}

// DrawRightString draws s ending at x
func (c *Canvas) DrawRightString(x, y float64, s string) {
	s = c.tr(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(s), y, s)
}

// DrawCentredString draws s centered on x
func (c *Canvas) DrawCentredString(x, y float64, s string) {
	s = c.tr(s)
	c.pdf.Text(x-c.pdf.GetStringWidth(s)/2, y, s)
}
