package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.base.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "local.yaml"), []byte("x"), 0o644))

	tests := []struct {
		name string
		dir  string
		file string
		want string
	}{
		{"same directory", nested, "local.yaml", filepath.Join(nested, "local.yaml")},
		{"parent directory", nested, "config.base.yaml", filepath.Join(root, "config.base.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindUp(tt.dir, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FindUp(nested, "missing-file-for-test.yaml")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "20250102_030405", FileTimestamp(ts))
	assert.Equal(t, ts, FixedTimeProvider{Time: ts}.Now())
}
