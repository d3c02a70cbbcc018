package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/utils"
	"github.com/shopspring/decimal"
)

// StructureColumns are the columns every ITBI dataset is expected to carry.
var StructureColumns = []string{
	"valor_avaliacao", "bairro", "tipo_imovel", "data_transacao",
	"area_construida", "logradouro",
}

type NullStat struct {
	Count      int     `json:"null_count"`
	Percentage float64 `json:"null_percentage"`
}

type DuplicateStats struct {
	Total      int     `json:"total_duplicates"`
	Percentage float64 `json:"duplicate_percentage"`
}

type Completeness struct {
	TotalCells int     `json:"total_cells"`
	NullCells  int     `json:"null_cells"`
	Percentage float64 `json:"completeness_percentage"`
}

// QualityReport is the data quality assessment of a consolidated table.
type QualityReport struct {
	Timestamp      time.Time           `json:"timestamp"`
	TotalRecords   int                 `json:"total_records"`
	TotalColumns   int                 `json:"total_columns"`
	Columns        []string            `json:"columns"`
	NullAnalysis   map[string]NullStat `json:"null_analysis"`
	Duplicates     DuplicateStats      `json:"duplicates"`
	Completeness   Completeness        `json:"completeness"`
	ITBIValidation map[string]bool     `json:"itbi_validation"`
	OperationLog   []logger.Operation  `json:"operation_log"`
}

// ChecksPassed returns the number of passed structure checks and the total.
func (r QualityReport) ChecksPassed() (passed, total int) {
	for _, ok := range r.ITBIValidation {
		if ok {
			passed++
		}
	}
	return passed, len(r.ITBIValidation)
}

// CheckQuality analyzes nulls, duplicates, completeness and the ITBI structure of t.
func CheckQuality(t load.Table, oplog *logger.OperationLog, now time.Time) QualityReport {
	r := QualityReport{
		Timestamp:      now,
		TotalRecords:   t.Len(),
		TotalColumns:   len(t.Columns),
		Columns:        append([]string(nil), t.Columns...),
		NullAnalysis:   make(map[string]NullStat, len(t.Columns)),
		ITBIValidation: ValidateStructure(t),
	}
	if oplog != nil {
		r.OperationLog = oplog.Entries()
	}

	nullCells := 0
	for col, n := range t.NullCounts() {
		r.NullAnalysis[col] = NullStat{Count: n, Percentage: percent(n, t.Len())}
		nullCells += n
	}

	_, dups := load.RemoveDuplicateRows(t)
	r.Duplicates = DuplicateStats{Total: dups, Percentage: percent(dups, t.Len())}

	totalCells := t.Len() * len(t.Columns)
	r.Completeness = Completeness{
		TotalCells: totalCells,
		NullCells:  nullCells,
		Percentage: percent(totalCells-nullCells, totalCells),
	}
	return r
}

// ValidateStructure reports the ITBI structure checks of t by name.
func ValidateStructure(t load.Table) map[string]bool {
	checks := make(map[string]bool, len(StructureColumns)+4)
	for _, col := range StructureColumns {
		checks["has_"+col] = t.HasColumn(col)
	}
	if t.HasColumn("valor_avaliacao") {
		checks["valor_is_numeric"] = allValues(t.Column("valor_avaliacao"), func(v string) bool {
			_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			return err == nil
		})
	}
	if t.HasColumn("data_transacao") {
		checks["data_is_date"] = allValues(t.Column("data_transacao"), func(v string) bool {
			_, err := time.Parse("2006-01-02", strings.TrimSpace(v))
			return err == nil
		})
	}
	checks["not_empty"] = t.Len() > 0
	_, dups := load.RemoveDuplicateRows(t)
	checks["no_full_duplicates"] = dups == 0
	return checks
}

// allValues reports whether every non-null value satisfies ok.
func allValues(values []string, ok func(string) bool) bool {
	for _, v := range values {
		if load.IsNull(v) {
			continue
		}
		if !ok(v) {
			return false
		}
	}
	return true
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(int64(n)).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).Round(2).Float64()
	return p
}

// QualityFiles are the paths of a written quality report.
type QualityFiles struct {
	JSON string
	Text string
}

// WriteQualityReport writes quality_report_<timestamp>.json and .txt under dir.
func WriteQualityReport(r QualityReport, dir string) (QualityFiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return QualityFiles{}, fmt.Errorf("failed to create quality directory: %w", err)
	}
	base := filepath.Join(dir, "quality_report_"+utils.FileTimestamp(r.Timestamp))
	files := QualityFiles{JSON: base + ".json", Text: base + ".txt"}

	if err := load.WriteJSON(files.JSON, r); err != nil {
		return QualityFiles{}, err
	}

	f, err := os.Create(files.Text)
	if err != nil {
		return QualityFiles{}, fmt.Errorf("failed to create text report: %w", err)
	}
	defer f.Close()
	if err := WriteTextReport(f, r); err != nil {
		return QualityFiles{}, err
	}
	return files, nil
}
