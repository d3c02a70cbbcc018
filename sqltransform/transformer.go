package sqltransform

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/queries"
	"github.com/aanasc4/data-integration/transform"
	"github.com/jmoiron/sqlx"
)

const (
	pipelineELT = "ELT"
	topBairros  = 5

	StepDataTypes         = "data_types"
	StepDerivedMetrics    = "derived_metrics"
	StepAggregatedMetrics = "aggregated_metrics"
)

// Transformer runs the transform inside the warehouse, one source year at a time.
type Transformer struct {
	DB     *load.DuckDB
	Logger *slog.Logger
}

func New(db *load.DuckDB, logger *slog.Logger) *Transformer {
	return &Transformer{DB: db, Logger: logger}
}

func (t *Transformer) dbx() *sqlx.DB {
	return sqlx.NewDb(t.DB.DB, "duckdb")
}

// TransformDataTypes replaces the ELT rows of a year with typed rows from itbi_raw.
// Rows without a positive assessed value are left out. Text columns then get
// the same encoding repair as the in-process transform.
func (t *Transformer) TransformDataTypes(year string) (int, error) {
	return t.logged(StepDataTypes, year, func() (int, error) {
		if _, err := t.DB.Exec("DELETE FROM itbi_transformed WHERE source_year = ? AND pipeline_type = ?", year, pipelineELT); err != nil {
			return 0, err
		}
		res, err := t.DB.ExecFile(queries.InsertTransformedELT, year)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}

		repaired, err := t.repairText(year)
		if err != nil {
			return 0, err
		}
		if repaired > 0 {
			t.Logger.Info(fmt.Sprintf("Repaired encoding of %d text values for %s", repaired, year))
		}
		return int(n), nil
	})
}

// repairText runs transform.RepairEncoding over the distinct values of each
// text column of the year's ELT rows and rewrites the ones it changes.
func (t *Transformer) repairText(year string) (int, error) {
	repaired := 0
	for _, col := range transform.TextColumns {
		var values []string
		query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM itbi_transformed WHERE source_year = ? AND pipeline_type = ? AND %[1]s IS NOT NULL", col)
		if err := t.dbx().Select(&values, query, year, pipelineELT); err != nil {
			return 0, fmt.Errorf("failed to read %s values: %w", col, err)
		}

		update := fmt.Sprintf("UPDATE itbi_transformed SET %[1]s = ? WHERE source_year = ? AND pipeline_type = ? AND %[1]s = ?", col)
		for _, v := range values {
			fixed, ok := transform.RepairEncoding(v)
			if !ok {
				continue
			}
			res, err := t.DB.Exec(update, fixed, year, pipelineELT, v)
			if err != nil {
				return 0, fmt.Errorf("failed to repair %s: %w", col, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				repaired += int(n)
			}
		}
	}
	return repaired, nil
}

// derivedMetricStatements are the UPDATEs deriving the enriched columns.
// The bucket expressions come from the same bands as the in-process transform.
func derivedMetricStatements() []string {
	where := "WHERE source_year = ? AND pipeline_type = ?"
	return []string{
		"UPDATE itbi_transformed SET valor_por_m2 = CASE WHEN area_construida > 0 THEN ROUND(valor_avaliacao / area_construida, 2) END " + where,
		"UPDATE itbi_transformed SET idade_imovel = ano_transacao - ano_construcao " + where,
		"UPDATE itbi_transformed SET tem_financiamento = COALESCE(valores_financiados_sfh > 0, false) " + where,
		fmt.Sprintf("UPDATE itbi_transformed SET faixa_valor = %s, categoria_area = %s, periodo_construcao = %s %s",
			transform.ValueBands.CaseSQL("valor_avaliacao"),
			transform.AreaBands.CaseSQL("area_construida"),
			transform.PeriodBands.CaseSQL("ano_construcao"),
			where),
	}
}

// CreateDerivedMetrics fills value per area, age, financing flag and buckets for a year.
func (t *Transformer) CreateDerivedMetrics(year string) (int, error) {
	return t.logged(StepDerivedMetrics, year, func() (int, error) {
		var updated int64
		for _, stmt := range derivedMetricStatements() {
			res, err := t.DB.Exec(stmt, year, pipelineELT)
			if err != nil {
				return 0, err
			}
			if n, err := res.RowsAffected(); err == nil && n > updated {
				updated = n
			}
		}
		return int(updated), nil
	})
}

type generalMetrics struct {
	Total          sql.NullFloat64 `db:"total_transacoes"`
	Mean           sql.NullFloat64 `db:"valor_medio"`
	Median         sql.NullFloat64 `db:"valor_mediano"`
	Max            sql.NullFloat64 `db:"valor_maximo"`
	Min            sql.NullFloat64 `db:"valor_minimo"`
	MeanArea       sql.NullFloat64 `db:"area_media"`
	MeanValuePerM2 sql.NullFloat64 `db:"valor_m2_medio"`
	FinancedPct    sql.NullFloat64 `db:"percentual_financiamento"`
	Bairros        sql.NullFloat64 `db:"bairros_unicos"`
	Tipos          sql.NullFloat64 `db:"tipos_imoveis_unicos"`
}

func (g generalMetrics) named() []Metric {
	pairs := []struct {
		name string
		v    sql.NullFloat64
	}{
		{"total_transacoes", g.Total},
		{"valor_medio", g.Mean},
		{"valor_mediano", g.Median},
		{"valor_maximo", g.Max},
		{"valor_minimo", g.Min},
		{"area_media", g.MeanArea},
		{"valor_m2_medio", g.MeanValuePerM2},
		{"percentual_financiamento", g.FinancedPct},
		{"bairros_unicos", g.Bairros},
		{"tipos_imoveis_unicos", g.Tipos},
	}
	out := make([]Metric, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Metric{Name: p.name, Value: p.v.Float64, Group: "general"})
	}
	return out
}

// Metric is one row of itbi_metrics.
type Metric struct {
	Name       string  `db:"metric_name"`
	Value      float64 `db:"metric_value"`
	Group      string  `db:"metric_group"`
	SourceYear string  `db:"source_year"`
}

type bairroMetric struct {
	Bairro   string  `db:"bairro"`
	Count    int64   `db:"transactions"`
	AvgValue float64 `db:"avg_value"`
}

// CalculateAggregatedMetrics recomputes the itbi_metrics rows of a year.
func (t *Transformer) CalculateAggregatedMetrics(year string) (int, error) {
	return t.logged(StepAggregatedMetrics, year, func() (int, error) {
		if _, err := t.DB.Exec("DELETE FROM itbi_metrics WHERE source_year = ?", year); err != nil {
			return 0, err
		}

		var g generalMetrics
		err := t.dbx().Get(&g, `SELECT
    CAST(COUNT(*) AS DOUBLE) AS total_transacoes,
    AVG(valor_avaliacao) AS valor_medio,
    MEDIAN(valor_avaliacao) AS valor_mediano,
    MAX(valor_avaliacao) AS valor_maximo,
    MIN(valor_avaliacao) AS valor_minimo,
    AVG(area_construida) AS area_media,
    AVG(valor_por_m2) AS valor_m2_medio,
    CAST(AVG(CASE WHEN tem_financiamento THEN 1 ELSE 0 END) * 100 AS DOUBLE) AS percentual_financiamento,
    CAST(COUNT(DISTINCT bairro) AS DOUBLE) AS bairros_unicos,
    CAST(COUNT(DISTINCT tipo_imovel) AS DOUBLE) AS tipos_imoveis_unicos
FROM itbi_transformed
WHERE source_year = ? AND pipeline_type = ?`, year, pipelineELT)
		if err != nil {
			return 0, fmt.Errorf("failed to compute general metrics: %w", err)
		}
		metrics := g.named()

		var top []bairroMetric
		err = t.dbx().Select(&top, `SELECT bairro, COUNT(*) AS transactions, AVG(valor_avaliacao) AS avg_value
FROM itbi_transformed
WHERE source_year = ? AND pipeline_type = ? AND bairro IS NOT NULL
GROUP BY bairro
ORDER BY transactions DESC, bairro
LIMIT ?`, year, pipelineELT, topBairros)
		if err != nil {
			return 0, fmt.Errorf("failed to compute neighborhood metrics: %w", err)
		}
		for _, b := range top {
			slug := Slugify(b.Bairro)
			metrics = append(metrics,
				Metric{Name: "transacoes_" + slug, Value: float64(b.Count), Group: "bairros"},
				Metric{Name: "valor_medio_" + slug, Value: b.AvgValue, Group: "bairros"},
			)
		}

		for _, m := range metrics {
			if _, err := t.DB.Exec(
				"INSERT INTO itbi_metrics (metric_name, metric_value, metric_group, source_year) VALUES (?, ?, ?, ?)",
				m.Name, m.Value, m.Group, year,
			); err != nil {
				return 0, fmt.Errorf("failed to store metric %s: %w", m.Name, err)
			}
		}
		return len(metrics), nil
	})
}

// Metrics returns the stored metrics of a year in insertion order.
func (t *Transformer) Metrics(year string) ([]Metric, error) {
	var out []Metric
	err := t.dbx().Select(&out,
		"SELECT metric_name, metric_value, metric_group, source_year FROM itbi_metrics WHERE source_year = ? ORDER BY id", year)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	return out, nil
}

// YearResult summarizes the transform of one year.
type YearResult struct {
	Year              string
	Transformed       int
	Derived           int
	AggregatedMetrics int
}

// TransformAllYears transforms every year present in itbi_raw. A failing year
// is recorded and skipped.
func (t *Transformer) TransformAllYears(oplog *logger.OperationLog) ([]YearResult, error) {
	var years []string
	if err := t.dbx().Select(&years, "SELECT DISTINCT source_year FROM itbi_raw WHERE source_year IS NOT NULL ORDER BY source_year"); err != nil {
		return nil, fmt.Errorf("failed to list raw years: %w", err)
	}

	var results []YearResult
	var errorList []error
	for _, year := range years {
		dataset := fmt.Sprintf("itbi_%s", year)
		r, err := t.transformYear(year)
		if err != nil {
			t.Logger.Error(fmt.Sprintf("Failed to transform ITBI %s", year), "error", err)
			oplog.Failure("transform_db", dataset, err)
			errorList = append(errorList, fmt.Errorf("year %s: %w", year, err))
			continue
		}
		oplog.Success("transform_db", dataset, r.Transformed)
		results = append(results, r)
	}

	return results, errors.Join(errorList...)
}

func (t *Transformer) transformYear(year string) (YearResult, error) {
	r := YearResult{Year: year}
	var err error
	if r.Transformed, err = t.TransformDataTypes(year); err != nil {
		return r, err
	}
	if r.Derived, err = t.CreateDerivedMetrics(year); err != nil {
		return r, err
	}
	if r.AggregatedMetrics, err = t.CalculateAggregatedMetrics(year); err != nil {
		return r, err
	}
	return r, nil
}

// CreateFinalViews creates v_itbi_consolidado, v_analise_temporal and v_analise_bairros.
func (t *Transformer) CreateFinalViews() error {
	if _, err := t.DB.ExecFile(queries.FinalViews); err != nil {
		return fmt.Errorf("failed to create final views: %w", err)
	}
	return nil
}

// logged runs a step and writes its outcome to transformation_log.
func (t *Transformer) logged(step, year string, fn func() (int, error)) (int, error) {
	start := time.Now()
	n, err := fn()
	elapsed := time.Since(start).Seconds()

	status, message := "success", any(nil)
	if err != nil {
		status, message, n = "error", err.Error(), 0
	}
	if _, logErr := t.DB.Exec(
		`INSERT INTO transformation_log
    (transformation_step, source_year, records_processed, records_created, execution_time_seconds, status, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		step, year, n, n, elapsed, status, message,
	); logErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to record transformation log: %w", logErr))
	}

	if err != nil {
		return 0, fmt.Errorf("%s for %s: %w", step, year, err)
	}
	t.Logger.Info(fmt.Sprintf("Step %s done for %s", step, year), "records", n, "seconds", elapsed)
	return n, nil
}
