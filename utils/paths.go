package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindUp looks for name in dir and then in each parent directory, and
// returns the first path that exists.
func FindUp(dir, name string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("cannot find %s in %s or its parents: %w", name, dir, os.ErrNotExist)
		}
		dir = parent
	}
}
