package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const topNullColumns = 10

// WriteTextReport renders the quality report as readable tables.
func WriteTextReport(w io.Writer, r QualityReport) error {
	if _, err := fmt.Fprintf(w, "ITBI RECIFE DATA QUALITY REPORT\nGenerated: %s\n\n", r.Timestamp.Format(time.RFC3339)); err != nil {
		return err
	}

	passed, total := r.ChecksPassed()
	summary := newTable(w, "Summary")
	summary.AppendRows([]table.Row{
		{"Records", r.TotalRecords},
		{"Columns", r.TotalColumns},
		{"Completeness", fmt.Sprintf("%.1f%%", r.Completeness.Percentage)},
		{"Null cells", fmt.Sprintf("%d of %d", r.Completeness.NullCells, r.Completeness.TotalCells)},
		{"Duplicate rows", fmt.Sprintf("%d (%.2f%%)", r.Duplicates.Total, r.Duplicates.Percentage)},
		{"Structure checks", fmt.Sprintf("%d/%d", passed, total)},
	})
	summary.Render()

	checks := newTable(w, "ITBI structure checks")
	checks.AppendHeader(table.Row{"Check", "Result"})
	names := make([]string, 0, len(r.ITBIValidation))
	for name := range r.ITBIValidation {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := "FAIL"
		if r.ITBIValidation[name] {
			result = "OK"
		}
		checks.AppendRow(table.Row{name, result})
	}
	checks.Render()

	nulls := newTable(w, "Top columns with nulls")
	nulls.AppendHeader(table.Row{"Column", "Nulls", "%"})
	for _, col := range mostNullColumns(r, topNullColumns) {
		s := r.NullAnalysis[col]
		nulls.AppendRow(table.Row{col, s.Count, fmt.Sprintf("%.1f", s.Percentage)})
	}
	nulls.Render()

	if len(r.OperationLog) > 0 {
		ops := newTable(w, "Operations")
		ops.AppendHeader(table.Row{"Time", "Operation", "Dataset", "Records", "Status", "Message"})
		for _, op := range r.OperationLog {
			ops.AppendRow(table.Row{op.Timestamp.Format(time.RFC3339), op.Operation, op.Dataset, op.Records, op.Status, op.Message})
		}
		ops.Render()
	}
	return nil
}

// mostNullColumns returns up to n columns with at least one null, most nulls first.
func mostNullColumns(r QualityReport, n int) []string {
	var cols []string
	for col, s := range r.NullAnalysis {
		if s.Count > 0 {
			cols = append(cols, col)
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		ci, cj := r.NullAnalysis[cols[i]].Count, r.NullAnalysis[cols[j]].Count
		if ci != cj {
			return ci > cj
		}
		return cols[i] < cols[j]
	})
	if len(cols) > n {
		cols = cols[:n]
	}
	return cols
}

// WriteInsights renders the analysis insights.
func WriteInsights(w io.Writer, ins Insights) error {
	t := ins.Temporal
	if _, err := fmt.Fprintf(w, "Period: %s-%s | Transactions: %d | Mean value: R$ %.2f\n\n",
		t.FirstYear, t.LastYear, t.TotalTransactions, t.MeanValue); err != nil {
		return err
	}

	years := newTable(w, "By year")
	years.AppendHeader(table.Row{"Year", "Transactions", "Mean", "Median", "Std dev", "Mean R$/m2", "Financed %"})
	for _, s := range t.Years {
		years.AppendRow(table.Row{s.Key, s.Count, money(s.Mean), money(s.Median), money(s.StdDev), money(s.MeanValuePerArea), fmt.Sprintf("%.1f", s.FinancedShare*100)})
	}
	years.Render()

	if len(t.ValueGrowth) > 0 || len(t.VolumeGrowth) > 0 {
		growth := newTable(w, "Year over year")
		growth.AppendHeader(table.Row{"Year", "Mean value", "Transactions"})
		volume := make(map[string]float64, len(t.VolumeGrowth))
		for _, g := range t.VolumeGrowth {
			volume[g.Year] = g.Percent
		}
		for _, g := range t.ValueGrowth {
			growth.AppendRow(table.Row{g.Year, fmt.Sprintf("%+.1f%%", g.Percent), fmt.Sprintf("%+.1f%%", volume[g.Year])})
		}
		growth.Render()
	}

	season := newTable(w, "Seasonality (mean transactions per month)")
	season.AppendHeader(table.Row{"Month", "Transactions"})
	for _, m := range t.Months() {
		season.AppendRow(table.Row{m, fmt.Sprintf("%.1f", t.Seasonality[m])})
	}
	season.Render()

	g := ins.Geographic
	if _, err := fmt.Fprintf(w, "Neighborhoods: %d | Most active: %s (%d) | Most valued: %s (R$ %.2f) | Top 5 share: %.1f%% | Top 10 share: %.1f%%\n",
		g.Neighborhoods, g.MostActive.Key, g.MostActive.Count, g.MostValued.Key, g.MostValued.Mean, g.ConcentrationTop5, g.ConcentrationTop10); err != nil {
		return err
	}
	statsTable(w, "Top neighborhoods", "Neighborhood", g.Top)
	statsTable(w, "Property types", "Type", ins.Segments.PropertyTypes)
	return nil
}

// WriteQueryResults renders column oriented query results with the columns in order.
func WriteQueryResults(w io.Writer, title string, columns []string, res map[string][]string) error {
	t := newTable(w, title)
	header := make(table.Row, len(columns))
	rows := 0
	for i, col := range columns {
		values, ok := res[col]
		if !ok {
			return fmt.Errorf("column %s missing from results", col)
		}
		header[i] = col
		rows = max(rows, len(values))
	}
	t.AppendHeader(header)

	for i := 0; i < rows; i++ {
		row := make(table.Row, len(columns))
		for j, col := range columns {
			if i < len(res[col]) {
				row[j] = res[col][i]
			}
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func statsTable(w io.Writer, title, keyHeader string, stats []Stats) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{keyHeader, "Transactions", "Mean", "Median", "Mean R$/m2", "Mean area", "Financed %"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Key, s.Count, money(s.Mean), money(s.Median), money(s.MeanValuePerArea), fmt.Sprintf("%.1f", s.MeanBuiltArea), fmt.Sprintf("%.1f", s.FinancedShare*100)})
	}
	t.Render()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.Style().Title.Align = text.AlignLeft
	return t
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
