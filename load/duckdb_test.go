package load

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aanasc4/data-integration/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func setupTestDB(t *testing.T) *DuckDB {
	cfg := &config.Config{
		DuckDB: config.DuckDBConfig{
			Path: ":memory:",
		},
	}

	db, err := NewDuckDB(cfg, testLogger())
	if err != nil {
		t.Fatalf("Failed to create DuckDB instance: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

func setupSchemaDB(t *testing.T) *DuckDB {
	db := setupTestDB(t)
	require.NoError(t, db.InitSchema())
	return db
}

func TestNewDuckDB(t *testing.T) {
	db := setupTestDB(t)
	assert.NotNil(t, db.DB)
	assert.Equal(t, ":memory:", db.DBType)
}

func TestNewDuckDB_FileWithInitQueries(t *testing.T) {
	dir := t.TempDir()
	initFile := filepath.Join(dir, "init.sql")
	require.NoError(t, os.WriteFile(initFile, []byte("SET threads = 1;"), 0o644))

	cfg := &config.Config{
		DuckDB: config.DuckDBConfig{
			Path:              filepath.Join(dir, "nested", "itbi.duckdb"),
			ConnInitFnQueries: []string{initFile},
		},
	}
	db, err := NewDuckDB(cfg, testLogger())
	require.NoError(t, err)
	defer db.Close()

	res, err := db.GetQueryResults("SELECT current_setting('threads') AS threads")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res["threads"])
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := setupSchemaDB(t)
	require.NoError(t, db.InitSchema())

	res, err := db.GetQueryResults(
		"SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' ORDER BY table_name")
	require.NoError(t, err)
	assert.Equal(t, []string{"itbi_metrics", "itbi_raw", "itbi_transformed", "load_metadata", "transformation_log"}, res["table_name"])
}

func TestSchemaMacros(t *testing.T) {
	db := setupSchemaDB(t)

	res, err := db.GetQueryResults(`SELECT
    br_number('200.000,50') AS a,
    br_number('nan') AS b,
    br_number('') AS c,
    br_date('15/06/2024') AS d,
    br_date('2024-06-15 13:45:00') AS e,
    br_date('2024-6-5') AS f,
    br_date('2024-02-30') AS g,
    br_number('1e400') AS h,
    br_year('2010') AS i,
    br_year('2010.0') AS j`)
	require.NoError(t, err)
	assert.Equal(t, []string{"200000.5"}, res["a"])
	assert.Equal(t, []string{""}, res["b"])
	assert.Equal(t, []string{""}, res["c"])
	assert.Contains(t, res["d"][0], "2024-06-15")
	assert.Contains(t, res["e"][0], "2024-06-15")
	assert.Equal(t, []string{""}, res["f"])
	assert.Equal(t, []string{""}, res["g"])
	assert.Equal(t, []string{""}, res["h"])
	assert.Equal(t, []string{"2010"}, res["i"])
	assert.Equal(t, []string{""}, res["j"])
}

func TestLoadCSVWithQuery(t *testing.T) {
	db := setupTestDB(t)

	err := db.RunQuery("CREATE TABLE test (id INTEGER, name STRING);")
	assert.NoError(t, err)

	csvData := []byte("id,name\n1,Alice\n2,Bob")
	queryTemplate := "COPY test FROM '{{.CsvFile}}' (FORMAT CSV, HEADER);"

	res, err := db.loadCSVWithQuery(db.DB, csvData, queryTemplate, nil)
	assert.NoError(t, err)
	assert.NotNil(t, res)

	results, err := db.GetQueryResults("SELECT * FROM test ORDER BY id;")
	assert.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"id":   {"1", "2"},
		"name": {"Alice", "Bob"},
	}, results)

	_, err = db.loadCSVWithQuery(db.DB, nil, queryTemplate, nil)
	assert.ErrorContains(t, err, "received empty CSV data")
}

func TestExec(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.RunQuery("CREATE TABLE t (x INTEGER)"))
	res, err := db.Exec("INSERT INTO t VALUES (?), (?)", 1, 2)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	out, err := db.GetQueryResults("SELECT sum(x) AS s FROM t WHERE x > ?", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, out["s"])

	_, err = db.Exec("SELEC 1")
	assert.Error(t, err)
	assert.Error(t, db.RunQuery("SELEC 1"))
}
