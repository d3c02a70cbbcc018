package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EncodeCSV renders a table as CSV with a header row.
func EncodeCSV(t Table, comma rune) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	writer.Comma = comma

	if err := writer.Write(t.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range t.Rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}

// DecodeCSV reads a CSV with a header row into a table.
func DecodeCSV(data []byte, comma rune) (Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, fmt.Errorf("received empty CSV data")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma

	header, err := reader.Read()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read CSV record: %w", err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// WriteCSV writes a table to path, creating the parent directory.
func WriteCSV(path string, t Table, comma rune) error {
	data, err := EncodeCSV(t, comma)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
