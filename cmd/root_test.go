package cmd

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseConfig = `
extract:
  sources:
    - year: "2023"
      url: "http://example.com/itbi_2023.csv"
duckdb:
  path: "datasets/itbi.duckdb"
`

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"etl", "elt", "analyze"})
}

func TestInitializeConfigAndLogger(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.base.yaml"), []byte(testBaseConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.test.yaml"), []byte("duckdb:\n  path: \":memory:\"\n"), 0o644))
	sub := filepath.Join(root, "cmd")
	require.NoError(t, os.Mkdir(sub, 0o755))

	t.Chdir(sub)
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("APP_ENV", "test")

	cfg, log, err := initializeConfigAndLogger()
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":memory:", cfg.DuckDB.Path)
	assert.Equal(t, "2023", cfg.Extract.Sources[0].Year)
}

func TestRootCommand_ErrorWithoutUsage(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_ACTIONS", "true")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"etl"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotContains(t, out.String(), "Usage:")
	assert.NotContains(t, out.String(), "Error:")
}
