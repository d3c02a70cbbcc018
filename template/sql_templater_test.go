package template

import (
	"testing"
	"testing/fstest"

	"github.com/aanasc4/data-integration/queries"
	"github.com/stretchr/testify/assert"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"insert.sql": {Data: []byte("INSERT INTO {{.Table}} SELECT * FROM read_csv('{{.CsvFile}}');")},
		"broken.sql": {Data: []byte("SELECT {{.Table")},
	}
}

func TestExecuteSqlTemplate(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		params     map[string]any
		want       string
		wantErr    bool
		errMessage string
	}{
		{
			name: "successful template execution",
			file: "insert.sql",
			params: map[string]any{
				"Table":   "itbi_raw",
				"CsvFile": "/tmp/x.csv",
			},
			want: "INSERT INTO itbi_raw SELECT * FROM read_csv('/tmp/x.csv');",
		},
		{
			name:       "missing parameter",
			file:       "insert.sql",
			params:     map[string]any{"Table": "itbi_raw"},
			wantErr:    true,
			errMessage: "failed to execute template insert.sql",
		},
		{
			name:       "parse error",
			file:       "broken.sql",
			wantErr:    true,
			errMessage: "failed to parse template broken.sql",
		},
		{
			name:       "file not found",
			file:       "nonexistent.sql",
			wantErr:    true,
			errMessage: "failed to read template file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ExecuteSqlTemplate(testFS(), tt.file, tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMessage != "" {
					assert.Contains(t, err.Error(), tt.errMessage)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, result)
			}
		})
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{queries.InsertRaw, queries.InsertTransformedETL} {
		t.Run(name, func(t *testing.T) {
			sql, err := ExecuteSqlTemplate(queries.FS, name, map[string]any{
				"CsvFile":      "/tmp/itbi.csv",
				"PipelineType": "ETL",
			})
			assert.NoError(t, err)
			assert.Contains(t, sql, "read_csv('/tmp/itbi.csv'")
		})
	}

	content, err := ReadSqlTemplate(queries.FS, queries.Schema)
	assert.NoError(t, err)
	assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS itbi_raw")
}
