package reports

import (
	"strconv"

	"academic-analytics/report-backend/internal/reports/export"
)

// Column widths in points
const (
	subjectColumnWidth  = 230
	averageColumnWidth  = 100
	coeffColumnWidth    = 80
	weightedColumnWidth = 100
)

// ComputeTotals sums coefficients and weighted scores in input order
func ComputeTotals(subjects []SubjectRecord) Totals {
	var t Totals
	for _, s := range subjects {
		t.Coeff += s.Coeff
		t.Weighted += s.WeightedScore
	}
	return t
}

// BuildTable lays the subjects out as the report table: a header row, one row
// per subject and a totals row.
func BuildTable(subjects []SubjectRecord) (export.Table, Totals) {
	table := export.Table{
		Columns: []export.Column{
			{Label: "SUBJECT", Width: subjectColumnWidth, Align: "L", Bold: true},
			{Label: "AVG", Width: averageColumnWidth, Align: "C", Numeric: true},
			{Label: "COEFF", Width: coeffColumnWidth, Align: "C", Numeric: true},
			{Label: "WEIGHTED", Width: weightedColumnWidth, Align: "C", Numeric: true},
		},
		Rows:           make([][]string, 0, len(subjects)),
		TotalsRuleFrom: 1,
	}

	for _, s := range subjects {
		table.Rows = append(table.Rows, []string{
			s.Name,
			formatScore(s.Average),
			formatCoeff(s.Coeff),
			formatScore(s.WeightedScore),
		})
	}

	totals := ComputeTotals(subjects)
	table.Totals = []string{"", "TOTALS", formatCoeff(totals.Coeff), formatScore(totals.Weighted)}

	return table, totals
}

// formatScore renders a score with two decimals independent of locale
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatCoeff renders a coefficient without forced decimals: 4 stays "4"
func formatCoeff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
