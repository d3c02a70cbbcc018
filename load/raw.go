package load

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/queries"
	"github.com/jmoiron/sqlx"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// RawColumns is the column order of the canonical raw CSV.
var RawColumns = []string{
	"valor_avaliacao", "bairro", "tipo_imovel", "data_transacao",
	"logradouro", "numero", "complemento", "cep",
	"area_terreno", "area_construida", "ano_construcao", "fracao_ideal",
	"valores_financiados_sfh",
	"source_year", "extraction_timestamp", "source_url", "pipeline_type",
}

// Batch is one year of rows headed for the warehouse.
type Batch struct {
	Year         string
	PipelineType string
	SourceURL    string
	Table        Table
}

func (b Batch) fileSource() string {
	if b.SourceURL != "" {
		return b.SourceURL
	}
	return fmt.Sprintf("dados.recife.pe.gov.br - %s", b.Year)
}

// LoadRawYear replaces the raw rows of a year. Every attempt is written to
// load_metadata; a failure is recorded with its message and returned.
func (db *DuckDB) LoadRawYear(b Batch) (int, error) {
	n, err := db.loadRawYear(b)
	if err != nil {
		if logErr := db.recordLoad(b, 0, statusError, err.Error()); logErr != nil {
			err = errors.Join(err, logErr)
		}
		return 0, fmt.Errorf("error loading raw ITBI %s: %w", b.Year, err)
	}

	if err := db.recordLoad(b, n, statusSuccess, ""); err != nil {
		return n, err
	}
	db.Logger.Info(fmt.Sprintf("Loaded raw ITBI %s", b.Year), "records", n)
	return n, nil
}

func (db *DuckDB) loadRawYear(b Batch) (int, error) {
	csv, err := EncodeCSV(b.Table.Project(RawColumns...), ',')
	if err != nil {
		return 0, err
	}

	deleted, n, err := db.replaceRows(csv, queries.InsertRaw, nil,
		"DELETE FROM itbi_raw WHERE source_year = ?", b.Year)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		db.Logger.Info(fmt.Sprintf("Replaced %d existing raw rows for %s", deleted, b.Year))
	}
	return int(n), nil
}

// replaceRows runs the delete and the templated CSV insert in one transaction,
// so a failed insert leaves the previous rows in place. It returns the number
// of deleted and inserted rows.
func (db *DuckDB) replaceRows(csv []byte, name string, params map[string]any, deleteQuery string, args ...any) (int64, int64, error) {
	ctx := context.Background()
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// No-op once committed
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, deleteQuery, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete previous rows: %w", err)
	}
	deleted, _ := res.RowsAffected()

	var inserted int64
	if len(csv) > 0 {
		res, err = db.loadCSVWithTemplate(tx, csv, name, params)
		if err != nil {
			return 0, 0, err
		}
		if inserted, err = res.RowsAffected(); err != nil {
			return 0, 0, fmt.Errorf("failed to count loaded rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit: %w", err)
	}
	return deleted, inserted, nil
}

func (db *DuckDB) recordLoad(b Batch, records int, status, message string) error {
	var errMsg any
	if message != "" {
		errMsg = message
	}
	_, err := db.Exec(
		`INSERT INTO load_metadata (source_year, records_loaded, file_source, pipeline_type, status, error_message)
VALUES (?, ?, ?, ?, ?, ?)`,
		b.Year, records, b.fileSource(), b.PipelineType, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record load metadata: %w", err)
	}
	return nil
}

// LoadAllRaw loads every batch; a failing year is recorded and the remaining ones still load.
func (db *DuckDB) LoadAllRaw(batches []Batch, oplog *logger.OperationLog) (int, error) {
	total := 0
	var errorList []error
	for _, b := range batches {
		dataset := fmt.Sprintf("itbi_%s", b.Year)
		n, err := db.LoadRawYear(b)
		if err != nil {
			db.Logger.Error(err.Error())
			oplog.Failure("load_raw", dataset, err)
			errorList = append(errorList, err)
			continue
		}
		oplog.Success("load_raw", dataset, n)
		total += n
	}

	if len(errorList) > 0 {
		return total, errors.Join(errorList...)
	}
	return total, nil
}

// RawCount is the number of raw rows of one year.
type RawCount struct {
	SourceYear string `db:"source_year"`
	Records    int64  `db:"records"`
}

// VerifyRaw returns the raw row totals per year.
func (db *DuckDB) VerifyRaw() ([]RawCount, error) {
	var counts []RawCount
	err := sqlx.NewDb(db.DB, "duckdb").Select(&counts,
		"SELECT source_year, COUNT(*) AS records FROM itbi_raw GROUP BY source_year ORDER BY source_year")
	if err != nil {
		return nil, fmt.Errorf("failed to count raw rows: %w", err)
	}
	return counts, nil
}

// LoadMetadata is one row of the load log.
type LoadMetadata struct {
	SourceYear    string  `db:"source_year"`
	RecordsLoaded int64   `db:"records_loaded"`
	PipelineType  string  `db:"pipeline_type"`
	Status        string  `db:"status"`
	ErrorMessage  *string `db:"error_message"`
}

func (db *DuckDB) LoadHistory() ([]LoadMetadata, error) {
	var rows []LoadMetadata
	err := sqlx.NewDb(db.DB, "duckdb").Select(&rows,
		"SELECT source_year, records_loaded, pipeline_type, status, error_message FROM load_metadata ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to read load metadata: %w", err)
	}
	return rows, nil
}

// CreateRawViews creates v_summary_by_year and v_data_quality.
func (db *DuckDB) CreateRawViews() error {
	if _, err := db.ExecFile(queries.RawViews); err != nil {
		return fmt.Errorf("failed to create raw views: %w", err)
	}
	return nil
}

// LoadTransformed replaces the rows of a year and pipeline variant in itbi_transformed
// with an already transformed table.
func (db *DuckDB) LoadTransformed(b Batch) (int, error) {
	var csv []byte
	if b.Table.Len() > 0 {
		var err error
		if csv, err = EncodeCSV(b.Table, ','); err != nil {
			return 0, err
		}
	}

	_, n, err := db.replaceRows(csv, queries.InsertTransformedETL, map[string]any{"PipelineType": b.PipelineType},
		"DELETE FROM itbi_transformed WHERE source_year = ? AND pipeline_type = ?", b.Year, b.PipelineType)
	if err != nil {
		return 0, fmt.Errorf("failed to load transformed ITBI %s: %w", b.Year, err)
	}
	db.Logger.Info(fmt.Sprintf("Loaded transformed ITBI %s", b.Year), "records", n, "pipeline_type", b.PipelineType)
	return int(n), nil
}
