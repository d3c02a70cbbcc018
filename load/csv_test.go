package load

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat(t *testing.T) {
	tests := []struct {
		name   string
		tables []Table
		want   Table
	}{
		{
			name:   "no tables",
			tables: nil,
			want:   Table{Rows: [][]string{}},
		},
		{
			name: "same columns",
			tables: []Table{
				{Columns: []string{"id", "name"}, Rows: [][]string{{"1", "Alice"}, {"2", "Bob"}}},
				{Columns: []string{"id", "name"}, Rows: [][]string{{"3", "Charlie"}}},
			},
			want: Table{
				Columns: []string{"id", "name"},
				Rows:    [][]string{{"1", "Alice"}, {"2", "Bob"}, {"3", "Charlie"}},
			},
		},
		{
			name: "union of columns in first-seen order",
			tables: []Table{
				{Columns: []string{"id", "name"}, Rows: [][]string{{"1", "Alice"}}},
				{Columns: []string{"email", "id"}, Rows: [][]string{{"bob@x", "2"}}},
			},
			want: Table{
				Columns: []string{"id", "name", "email"},
				Rows:    [][]string{{"1", "Alice", ""}, {"2", "", "bob@x"}},
			},
		},
		{
			name: "empty table between valid ones",
			tables: []Table{
				{Columns: []string{"id"}, Rows: [][]string{{"1"}}},
				{},
				{Columns: []string{"id"}, Rows: [][]string{{"2"}}},
			},
			want: Table{Columns: []string{"id"}, Rows: [][]string{{"1"}, {"2"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Concat(tt.tables...)
			assert.Equal(t, tt.want, got)

			rows := 0
			for _, tb := range tt.tables {
				rows += tb.Len()
			}
			assert.Equal(t, rows, got.Len())
		})
	}
}

func TestRemoveDuplicateRows(t *testing.T) {
	in := Table{
		Columns: []string{"id", "name"},
		Rows:    [][]string{{"1", "Alice"}, {"2", "Bob"}, {"1", "Alice"}, {"1", "Alicia"}},
	}
	got, removed := RemoveDuplicateRows(in)
	assert.Equal(t, 1, removed)
	assert.Equal(t, [][]string{{"1", "Alice"}, {"2", "Bob"}, {"1", "Alicia"}}, got.Rows)
}

func TestTableHelpers(t *testing.T) {
	tb := Table{
		Columns: []string{"bairro", "valor"},
		Rows:    [][]string{{"Boa Viagem", "10"}, {"", "nan"}, {"Varzea"}},
	}

	assert.Equal(t, 1, tb.Index("valor"))
	assert.Equal(t, -1, tb.Index("cep"))
	assert.Equal(t, "", tb.Value(2, "valor"))
	assert.Equal(t, []string{"10", "nan", ""}, tb.Column("valor"))
	assert.Nil(t, tb.Column("cep"))
	assert.Equal(t, map[string]int{"bairro": 1, "valor": 2}, tb.NullCounts())

	p := tb.Project("valor", "cep")
	assert.Equal(t, []string{"valor", "cep"}, p.Columns)
	assert.Equal(t, []string{"10", ""}, p.Rows[0])
}

func TestEncodeDecodeCSV(t *testing.T) {
	tb := Table{
		Columns: []string{"bairro", "complemento"},
		Rows:    [][]string{{"Boa Viagem", "Apto; 101"}, {"Derby", ""}},
	}

	data, err := EncodeCSV(tb, ';')
	require.NoError(t, err)
	assert.Equal(t, "bairro;complemento\nBoa Viagem;\"Apto; 101\"\nDerby;\n", string(data))

	got, err := DecodeCSV(data, ';')
	require.NoError(t, err)
	assert.Equal(t, tb, got)

	_, err = DecodeCSV([]byte("  "), ';')
	assert.ErrorContains(t, err, "received empty CSV data")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := WriteCSV(path, Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}, ';')
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(content))
}
