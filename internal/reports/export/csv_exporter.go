package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter exports a report table to CSV format
type CSVExporter struct {
	writer  *csv.Writer
	options CSVOptions
}

// CSVOptions configures CSV export behavior
type CSVOptions struct {
	Delimiter     rune `json:"delimiter"`      // Field delimiter (default: comma)
	UseCRLF       bool `json:"use_crlf"`       // Use \r\n for line terminator
	IncludeHeader bool `json:"include_header"` // Include column headers
	IncludeTotals bool `json:"include_totals"` // Include the totals row
}

// DefaultCSVOptions returns default CSV export options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:     ',',
		UseCRLF:       false,
		IncludeHeader: true,
		IncludeTotals: true,
	}
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter(w io.Writer, options CSVOptions) *CSVExporter {
	writer := csv.NewWriter(w)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}
	writer.UseCRLF = options.UseCRLF

	return &CSVExporter{
		writer:  writer,
		options: options,
	}
}

// WriteTable writes the header, body rows and totals row, then flushes
func (e *CSVExporter) WriteTable(t Table) error {
	if e.options.IncludeHeader {
		header := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			header[i] = col.Label
		}
		if err := e.writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range t.Rows {
		if err := e.writer.Write(pad(row, len(t.Columns))); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if e.options.IncludeTotals && t.Totals != nil {
		if err := e.writer.Write(pad(t.Totals, len(t.Columns))); err != nil {
			return fmt.Errorf("failed to write totals: %w", err)
		}
	}

	return e.Flush()
}

// Flush writes any buffered data to the underlying writer
func (e *CSVExporter) Flush() error {
	e.writer.Flush()
	return e.writer.Error()
}

// pad returns row extended with empty cells up to n columns
func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
