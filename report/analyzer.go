package report

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/queries"
	"github.com/aanasc4/data-integration/template"
	"github.com/jmoiron/sqlx"
)

// Row is a transformed transaction as read back from itbi_transformed.
type Row struct {
	Value        float64         `db:"valor_avaliacao"`
	Neighborhood sql.NullString  `db:"bairro"`
	PropertyType sql.NullString  `db:"tipo_imovel"`
	Date         sql.NullTime    `db:"data_transacao"`
	BuiltArea    sql.NullFloat64 `db:"area_construida"`
	ValuePerArea sql.NullFloat64 `db:"valor_por_m2"`
	Financed     sql.NullBool    `db:"tem_financiamento"`
	Year         sql.NullInt64   `db:"ano_transacao"`
	Month        sql.NullInt64   `db:"mes_transacao"`
	SourceYear   string          `db:"source_year"`
	PipelineType string          `db:"pipeline_type"`
}

// Analyzer reads the transformed rows of one pipeline variant. It never writes.
type Analyzer struct {
	DB           *load.DuckDB
	Logger       *slog.Logger
	PipelineType string
	TopN         int
}

func NewAnalyzer(db *load.DuckDB, pipelineType string, topN int, logger *slog.Logger) *Analyzer {
	return &Analyzer{DB: db, Logger: logger, PipelineType: pipelineType, TopN: topN}
}

func (a *Analyzer) Rows() ([]Row, error) {
	query, err := template.ReadSqlTemplate(queries.FS, queries.SelectTransformed)
	if err != nil {
		return nil, err
	}

	var rows []Row
	if err := sqlx.NewDb(a.DB.DB, "duckdb").Select(&rows, query, a.PipelineType); err != nil {
		return nil, fmt.Errorf("failed to read transformed rows: %w", err)
	}
	a.Logger.Info(fmt.Sprintf("Loaded %d %s rows for analysis", len(rows), a.PipelineType))
	return rows, nil
}

// Insights reads the rows and computes the temporal, geographic and segment insights.
func (a *Analyzer) Insights() (Insights, error) {
	rows, err := a.Rows()
	if err != nil {
		return Insights{}, err
	}
	return ComputeInsights(rows, a.TopN), nil
}

// RollupColumns are the result columns of Rollup after the grouping column.
var RollupColumns = []string{"total_transacoes", "valor_medio", "valor_m2_medio"}

// Rollup counts the rows and averages value and value per m2 for each value
// of column, busiest group first.
func (a *Analyzer) Rollup(column string) (map[string][]string, error) {
	query, err := template.ExecuteSqlTemplate(queries.FS, queries.SelectRollup, map[string]any{"GroupBy": column})
	if err != nil {
		return nil, err
	}
	res, err := a.DB.GetQueryResults(query, a.PipelineType)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up by %s: %w", column, err)
	}
	return res, nil
}
