package load

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aanasc4/data-integration/config"
	"github.com/aanasc4/data-integration/queries"
	"github.com/aanasc4/data-integration/template"
	"github.com/marcboeker/go-duckdb"
)

const tmpCSVPattern = "itbi_*.csv"

type DuckDB struct {
	Logger    *slog.Logger
	DB        *sql.DB
	Connector *duckdb.Connector
	DBType    string
}

func NewDuckDB(config *config.Config, logger *slog.Logger) (*DuckDB, error) {
	var path string
	var dbType string
	if config.DuckDB.Path == "" || config.DuckDB.Path == ":memory:" {
		path = ""
		dbType = ":memory:"
	} else {
		path = config.DuckDB.Path
		dbType = path
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var connInitFn func(driver.ExecerContext) error
	if len(config.DuckDB.ConnInitFnQueries) > 0 {
		connInitFn = func(exec driver.ExecerContext) error {
			for _, path := range config.DuckDB.ConnInitFnQueries {
				query, err := readQuery(path)
				if err != nil {
					return err
				}

				// Execute the query read from the file
				_, err = exec.ExecContext(context.Background(), string(query), nil)
				if err != nil {
					return fmt.Errorf("failed to execute query from file %s: %w", path, err)
				}
			}
			return nil
		}
		logger.Debug(fmt.Sprintf("Connection initialization queries: %v", config.DuckDB.ConnInitFnQueries))
	}

	// Every new connection runs the init queries
	connector, err := duckdb.NewConnector(path, connInitFn)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(connector)

	switch dbType {
	case ":memory:":
		logger.Info("Connected to DuckDB in-memory database")
	default:
		logger.Info(fmt.Sprintf("Connected to local DuckDB database at %s", dbType))
	}

	return &DuckDB{
		Logger:    logger,
		DB:        db,
		Connector: connector,
		DBType:    dbType,
	}, nil
}

func readQuery(path string) ([]byte, error) {
	query, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return query, nil
}

// Close closes the database and then the connector.
func (db *DuckDB) Close() {
	db.DB.Close()
	db.Connector.Close()
}

// InitSchema creates the warehouse tables, sequences, indexes and macros.
func (db *DuckDB) InitSchema() error {
	schema, err := template.ReadSqlTemplate(queries.FS, queries.Schema)
	if err != nil {
		return err
	}
	if err := db.RunQuery(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	db.Logger.Debug("Schema initialized")
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// loadCSVWithTemplate loads CSV data with one of the embedded SQL templates.
func (db *DuckDB) loadCSVWithTemplate(ex execer, csv []byte, name string, params map[string]any) (sql.Result, error) {
	queryTemplate, err := template.ReadSqlTemplate(queries.FS, name)
	if err != nil {
		return nil, err
	}
	return db.loadCSVWithQuery(ex, csv, queryTemplate, params)
}

// loadCSVWithQuery loads CSV data using a templated SQL query, on the database or
// inside a transaction. The query template should use {{.CsvFile}} where the
// temporary CSV filename should be inserted.
func (db *DuckDB) loadCSVWithQuery(ex execer, csv []byte, queryTemplate string, params map[string]any) (sql.Result, error) {
	// Create a temporary file with the CSV data
	tmpFile, err := createTmpFile(csv)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	// Insert the temporary file name into the query template
	if params == nil {
		params = make(map[string]any)
	}
	params["CsvFile"] = tmpFile.Name()

	query, err := template.Render("sql", queryTemplate, params)
	if err != nil {
		return nil, err
	}

	db.Logger.Debug("Executing DuckDB query", "query", query)

	// Execute the query
	res, err := ex.ExecContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return res, nil
}

func createTmpFile(csv []byte) (*os.File, error) {
	// Validate CSV content
	if len(csv) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	// Create a temporary file
	tmpFile, err := os.CreateTemp("", tmpCSVPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	// Write the CSV data to the temporary file
	if _, err := tmpFile.Write(csv); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write to temporary file: %w", err)
	}

	// Close the file to flush the data
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmpFile, nil
}

// RunQuery executes one or more statements without arguments.
func (db *DuckDB) RunQuery(query string) error {
	_, err := db.DB.ExecContext(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

// Exec runs a parameterized statement.
func (db *DuckDB) Exec(query string, args ...any) (sql.Result, error) {
	res, err := db.DB.ExecContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return res, nil
}

// ExecFile runs one of the embedded statements with args.
func (db *DuckDB) ExecFile(name string, args ...any) (sql.Result, error) {
	query, err := template.ReadSqlTemplate(queries.FS, name)
	if err != nil {
		return nil, err
	}
	return db.Exec(query, args...)
}

// GetQueryResults executes a query and returns the results as a map of column names to slices of values
func (db *DuckDB) GetQueryResults(query string, args ...any) (map[string][]string, error) {
	// Execute the query
	rows, err := db.DB.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	// get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	// Initialize a map to hold slices for each column
	results := make(map[string][]string)
	for _, col := range columns {
		results[col] = []string{}
	}

	// Iterate over the rows
	for rows.Next() {
		// Create a slice to hold the column values
		values := make([]interface{}, len(columns))
		// Create a slice of pointers to the column values
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		// Scan the row into the value pointers
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// Convert values to strings and append to the results map; NULL becomes ""
		for i, col := range columns {
			valueStr := ""
			if values[i] != nil {
				valueStr = fmt.Sprintf("%v", values[i])
			}
			results[col] = append(results[col], valueStr)
		}
	}

	// Check for errors from iterating over rows
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return results, nil
}
