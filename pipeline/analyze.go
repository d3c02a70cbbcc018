package pipeline

import (
	"fmt"
	"io"

	"github.com/aanasc4/data-integration/report"
)

// bandRollups are the derived bands summarized after the insights.
var bandRollups = []struct {
	column string
	title  string
}{
	{column: "faixa_valor", title: "Value bands"},
	{column: "categoria_area", title: "Built area bands"},
	{column: "periodo_construcao", title: "Construction periods"},
}

// Analyze renders the insights of the configured pipeline variant to w,
// followed by the distribution of the derived bands.
func (p *Pipeline) Analyze(w io.Writer) (report.Insights, error) {
	cfg := p.config.Report
	analyzer := report.NewAnalyzer(p.DuckDB, cfg.PipelineType, cfg.TopN, p.Logger)

	insights, err := analyzer.Insights()
	if err != nil {
		return report.Insights{}, fmt.Errorf("error computing insights: %w", err)
	}
	if insights.Temporal.TotalTransactions == 0 {
		return insights, fmt.Errorf("no %s rows in itbi_transformed, run the %s pipeline first", cfg.PipelineType, cfg.PipelineType)
	}

	if err := report.WriteInsights(w, insights); err != nil {
		return insights, fmt.Errorf("error writing insights: %w", err)
	}

	for _, r := range bandRollups {
		res, err := analyzer.Rollup(r.column)
		if err != nil {
			return insights, err
		}
		columns := append([]string{r.column}, report.RollupColumns...)
		if err := report.WriteQueryResults(w, r.title, columns, res); err != nil {
			return insights, fmt.Errorf("error writing %s: %w", r.title, err)
		}
	}
	return insights, nil
}
