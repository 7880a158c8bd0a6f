package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter exports a report table to Excel format
type ExcelExporter struct {
	file    *excelize.File
	options ExcelOptions
	styles  map[styleKey]int
}

// ExcelOptions configures Excel export behavior
type ExcelOptions struct {
	SheetName    string            `json:"sheet_name"`
	FreezeHeader bool              `json:"freeze_header"`
	HeaderStyle  *ExcelStyleConfig `json:"header_style,omitempty"`
	TotalsStyle  *ExcelStyleConfig `json:"totals_style,omitempty"`
	// PointsPerUnit converts PDF column widths to Excel character widths
	PointsPerUnit float64 `json:"points_per_unit"`
}

// ExcelStyleConfig defines style for cells
type ExcelStyleConfig struct {
	FontBold  bool   `json:"font_bold"`
	FontSize  int    `json:"font_size"`
	FontColor string `json:"font_color"`
	FillColor string `json:"fill_color"`
	Alignment string `json:"alignment"` // left, center, right
	Border    bool   `json:"border"`
}

// DefaultExcelOptions returns default Excel export options
func DefaultExcelOptions() ExcelOptions {
	return ExcelOptions{
		SheetName:     "Report",
		FreezeHeader:  true,
		PointsPerUnit: 6,
		HeaderStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FillColor: "2E004F",
			FontColor: "FFFFFF",
			Alignment: "center",
			Border:    true,
		},
		TotalsStyle: &ExcelStyleConfig{
			FontBold:  true,
			FontSize:  11,
			FontColor: "2E004F",
			Alignment: "center",
		},
	}
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(options ExcelOptions) (*ExcelExporter, error) {
	file := excelize.NewFile()

	// Rename the default sheet
	if err := file.SetSheetName("Sheet1", options.SheetName); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	return &ExcelExporter{
		file:    file,
		options: options,
		styles:  make(map[styleKey]int),
	}, nil
}

// WriteTable writes the header, body rows and totals row to the sheet
func (e *ExcelExporter) WriteTable(t Table) error {
	sheet := e.options.SheetName

	headerStyleID, err := e.styleID(e.options.HeaderStyle, false)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := e.file.SetCellValue(sheet, cell, col.Label); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}
		if headerStyleID > 0 {
			e.file.SetCellStyle(sheet, cell, cell, headerStyleID)
		}

		if e.options.PointsPerUnit > 0 {
			name, _ := excelize.ColumnNumberToName(i + 1)
			e.file.SetColWidth(sheet, name, name, col.Width/e.options.PointsPerUnit)
		}
	}

	for r, row := range t.Rows {
		if err := e.writeRow(sheet, r+2, t.Columns, row, nil); err != nil {
			return err
		}
	}

	if t.Totals != nil {
		if err := e.writeRow(sheet, len(t.Rows)+2, t.Columns, t.Totals, e.options.TotalsStyle); err != nil {
			return err
		}
	}

	if e.options.FreezeHeader {
		e.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			Split:       false,
			XSplit:      0,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	return nil
}

func (e *ExcelExporter) writeRow(sheet string, rowNum int, columns []Column, row []string, config *ExcelStyleConfig) error {
	for c, val := range row {
		cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)

		var value interface{} = val
		twoDecimals := false
		if c < len(columns) && columns[c].Numeric {
			if f, ok := parseNumber(val); ok {
				value = f
				twoDecimals = hasTwoDecimals(val)
			}
		}

		if err := e.file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell value: %w", err)
		}

		styleID, err := e.styleID(config, twoDecimals)
		if err != nil {
			return fmt.Errorf("failed to create cell style: %w", err)
		}
		if styleID > 0 {
			e.file.SetCellStyle(sheet, cell, cell, styleID)
		}
	}
	return nil
}

// parseNumber accepts finite decimal numbers only
func parseNumber(val string) (float64, bool) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func hasTwoDecimals(val string) bool {
	i := strings.IndexByte(val, '.')
	return i >= 0 && len(val)-i-1 == 2
}

// WriteTo writes the Excel file to a writer
func (e *ExcelExporter) WriteTo(w io.Writer) error {
	return e.file.Write(w)
}

// Close closes the Excel file
func (e *ExcelExporter) Close() error {
	return e.file.Close()
}

type styleKey struct {
	config      *ExcelStyleConfig
	twoDecimals bool
}

// styleID returns the Excel style for config, adding the 0.00 number format
// when twoDecimals is set. A nil config without a number format yields 0.
func (e *ExcelExporter) styleID(config *ExcelStyleConfig, twoDecimals bool) (int, error) {
	if config == nil && !twoDecimals {
		return 0, nil
	}

	key := styleKey{config: config, twoDecimals: twoDecimals}
	if id, ok := e.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if twoDecimals {
		style.NumFmt = 2 // 0.00
	}
	if config != nil {
		applyStyleConfig(style, config)
	}

	id, err := e.file.NewStyle(style)
	if err != nil {
		return 0, err
	}
	e.styles[key] = id
	return id, nil
}

func applyStyleConfig(style *excelize.Style, config *ExcelStyleConfig) {
	style.Font = &excelize.Font{
		Bold: config.FontBold,
		Size: float64(config.FontSize),
	}
	if config.FontColor != "" {
		style.Font.Color = config.FontColor
	}

	if config.FillColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{config.FillColor},
		}
	}

	switch config.Alignment {
	case "left", "center", "right":
		style.Alignment = &excelize.Alignment{Horizontal: config.Alignment}
	}

	if config.Border {
		style.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
}
