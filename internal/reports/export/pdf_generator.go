package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderError reports a failure raised by the PDF engine or the final write
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PDFGenerator lays out a single table document on A4 pages
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
	tr      func(string) string
}

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string     `json:"page_size"`   // A4, Letter, Legal
	Orientation    string     `json:"orientation"` // portrait, landscape
	FontFamily     string     `json:"font_family"`
	FontSize       float64    `json:"font_size"`
	HeaderFontSize float64    `json:"header_font_size"`
	RowHeight      float64    `json:"row_height"`
	HeaderPadding  float64    `json:"header_padding"`
	PrimaryColor   PDFColor   `json:"primary_color"`
	AccentColor    PDFColor   `json:"accent_color"`
	AlternateColor PDFColor   `json:"alternate_color"`
	Margins        PDFMargins `json:"margins"`
	Compress       bool       `json:"compress"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Common colors
var (
	White = PDFColor{R: 255, G: 255, B: 255}
	Gray  = PDFColor{R: 128, G: 128, B: 128}
)

// PDFMargins represents page margins in points
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options. The top margin leaves room
// for the page decoration drawn above the table.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "portrait",
		FontFamily:     "Helvetica",
		FontSize:       10,
		HeaderFontSize: 10,
		RowHeight:      22,
		HeaderPadding:  12,
		PrimaryColor:   PDFColor{R: 46, G: 0, B: 79},     // #2e004f
		AccentColor:    PDFColor{R: 108, G: 92, B: 231},  // #6c5ce7
		AlternateColor: PDFColor{R: 253, G: 251, B: 255}, // #fdfbff
		Margins: PDFMargins{
			Left:   40,
			Right:  40,
			Top:    280,
			Bottom: 60,
		},
		Compress: true,
	}
}

// Column describes one table column
type Column struct {
	Label   string
	Width   float64
	Align   string // L, C, R
	Bold    bool   // bold body cells
	Numeric bool   // stored as numbers in spreadsheet exports
}

// Table is the flowable content of a document: a header, body rows and an
// optional totals row.
type Table struct {
	Columns []Column
	Rows    [][]string
	Totals  []string
	// TotalsRuleFrom is the first column the rule above the totals row spans
	TotalsRuleFrom int
}

// PageDecorator draws fixed page furniture; it runs once for every page
type PageDecorator func(c *Canvas)

// Document is everything needed to render one PDF
type Document struct {
	Title    string
	Author   string
	Table    Table
	Decorate PageDecorator
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "pt", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)
	pdf.SetCompression(options.Compress)

	return &PDFGenerator{
		pdf:     pdf,
		options: options,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// WriteDocument lays out doc. Engine panics are returned as a RenderError.
func (g *PDFGenerator) WriteDocument(doc Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Op: "layout document", Err: fmt.Errorf("%v", r)}
		}
	}()

	if doc.Title != "" {
		g.pdf.SetTitle(doc.Title, true)
	}
	if doc.Author != "" {
		g.pdf.SetAuthor(doc.Author, true)
	}

	if doc.Decorate != nil {
		canvas := &Canvas{pdf: g.pdf, family: g.options.FontFamily, tr: g.tr}
		g.pdf.SetHeaderFuncMode(func() {
			doc.Decorate(canvas)
		}, true)
	}

	g.pdf.AddPage()
	g.addTable(doc.Table)

	if g.pdf.Err() {
		return &RenderError{Op: "layout document", Err: g.pdf.Error()}
	}
	return nil
}

// addTable adds the header row, body rows and totals row
func (g *PDFGenerator) addTable(t Table) {
	g.addTableHeader(t.Columns)
	g.addTableData(t.Columns, t.Rows)
	if t.Totals != nil {
		g.addTotalsRow(t.Columns, t.Totals, t.TotalsRuleFrom)
	}
}

// addTableHeader adds the header row with a rule below it
func (g *PDFGenerator) addTableHeader(columns []Column) {
	rowHeight := g.options.RowHeight
	g.ensureSpace(rowHeight + g.options.HeaderPadding)

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.HeaderFontSize)
	g.setTextColor(g.options.PrimaryColor)

	x, y := g.pdf.GetX(), g.pdf.GetY()
	for _, col := range columns {
		g.pdf.CellFormat(col.Width, rowHeight, g.tr(col.Label), "", 0, col.Align, false, 0, "")
	}

	ruleY := y + rowHeight + g.options.HeaderPadding
	g.pdf.SetLineWidth(2)
	g.setDrawColor(g.options.PrimaryColor)
	g.pdf.Line(x, ruleY, x+tableWidth(columns), ruleY)
	g.pdf.SetXY(x, ruleY)
}

// addTableData adds the body rows with alternating fill
func (g *PDFGenerator) addTableData(columns []Column, rows [][]string) {
	rowHeight := g.options.RowHeight
	g.pdf.SetTextColor(0, 0, 0)

	for i, row := range rows {
		g.ensureSpace(rowHeight)

		if i%2 == 1 {
			g.setFillColor(g.options.AlternateColor)
		} else {
			g.setFillColor(White)
		}

		for j, col := range columns {
			style := ""
			if col.Bold {
				style = "B"
			}
			g.pdf.SetFont(g.options.FontFamily, style, g.options.FontSize)

			val := ""
			if j < len(row) {
				val = row[j]
			}
			g.pdf.CellFormat(col.Width, rowHeight, g.tr(val), "", 0, col.Align, true, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

// addTotalsRow adds the bold summary row below a thin accent rule
func (g *PDFGenerator) addTotalsRow(columns []Column, totals []string, ruleFrom int) {
	rowHeight := g.options.RowHeight
	g.ensureSpace(rowHeight)

	x, y := g.pdf.GetX(), g.pdf.GetY()
	ruleStart := x
	for i := 0; i < ruleFrom && i < len(columns); i++ {
		ruleStart += columns[i].Width
	}
	g.pdf.SetLineWidth(1)
	g.setDrawColor(g.options.AccentColor)
	g.pdf.Line(ruleStart, y, x+tableWidth(columns), y)

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
	g.setTextColor(g.options.PrimaryColor)
	for j, col := range columns {
		val := ""
		if j < len(totals) {
			val = totals[j]
		}
		g.pdf.CellFormat(col.Width, rowHeight, g.tr(val), "", 0, col.Align, false, 0, "")
	}
	g.pdf.Ln(-1)
}

// ensureSpace starts a new page when a row of height h would cross the
// bottom margin. Rows are never split.
func (g *PDFGenerator) ensureSpace(h float64) {
	_, pageHeight := g.pdf.GetPageSize()
	if g.pdf.GetY()+h > pageHeight-g.options.Margins.Bottom {
		g.pdf.AddPage()
	}
}

func (g *PDFGenerator) setTextColor(c PDFColor) { g.pdf.SetTextColor(c.R, c.G, c.B) }
func (g *PDFGenerator) setFillColor(c PDFColor) { g.pdf.SetFillColor(c.R, c.G, c.B) }
func (g *PDFGenerator) setDrawColor(c PDFColor) { g.pdf.SetDrawColor(c.R, c.G, c.B) }

func tableWidth(columns []Column) float64 {
	total := 0.0
	for _, col := range columns {
		total += col.Width
	}
	return total
}

// PageCount returns the number of pages laid out so far
func (g *PDFGenerator) PageCount() int {
	return g.pdf.PageCount()
}

// WriteTo writes the PDF to a writer
func (g *PDFGenerator) WriteTo(w io.Writer) error {
	if err := g.pdf.Output(w); err != nil {
		return &RenderError{Op: "write pdf", Err: err}
	}
	return nil
}

// OutputToBytes returns the PDF as bytes
func (g *PDFGenerator) OutputToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveAs saves the PDF to a file, replacing any existing file
func (g *PDFGenerator) SaveAs(path string) error {
	if err := g.pdf.OutputFileAndClose(path); err != nil {
		return &RenderError{Op: "save " + path, Err: err}
	}
	return nil
}

// PDFRenderer renders documents to files, one generator per call
type PDFRenderer struct {
	Options PDFOptions
}

// NewPDFRenderer creates a renderer with the given options
func NewPDFRenderer(options PDFOptions) *PDFRenderer {
	return &PDFRenderer{Options: options}
}

// RenderToFile lays out doc and writes it to path
func (r *PDFRenderer) RenderToFile(path string, doc Document) error {
	g := NewPDFGenerator(r.Options)
	if err := g.WriteDocument(doc); err != nil {
		return err
	}
	return g.SaveAs(path)
}
