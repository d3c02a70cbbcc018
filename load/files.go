package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aanasc4/data-integration/utils"
	"github.com/xuri/excelize/v2"
)

const (
	csvDelimiter = ';'
	sheetName    = "ITBI"
)

// SavedFiles lists the files produced by SaveConsolidated.
type SavedFiles struct {
	CSV    string `json:"csv"`
	Latest string `json:"latest"`
	Excel  string `json:"excel,omitempty"`
}

// SaveConsolidated writes <name>_<timestamp>.csv, overwrites <name>_latest.csv
// and, when excel is set, writes <name>_<timestamp>.xlsx.
func SaveConsolidated(t Table, dir, name string, now time.Time, excel bool) (SavedFiles, error) {
	ts := utils.FileTimestamp(now)
	files := SavedFiles{
		CSV:    filepath.Join(dir, fmt.Sprintf("%s_%s.csv", name, ts)),
		Latest: filepath.Join(dir, fmt.Sprintf("%s_latest.csv", name)),
	}

	if err := WriteCSV(files.CSV, t, csvDelimiter); err != nil {
		return SavedFiles{}, err
	}
	if err := WriteCSV(files.Latest, t, csvDelimiter); err != nil {
		return SavedFiles{}, err
	}

	if excel {
		files.Excel = filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", name, ts))
		if err := WriteExcel(files.Excel, t); err != nil {
			return SavedFiles{}, err
		}
	}

	return files, nil
}

// WriteExcel writes the table to a single-sheet workbook.
func WriteExcel(path string, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// SaveDatasetsSeparately writes itbi_<year>_processed.csv for every batch.
func SaveDatasetsSeparately(batches []Batch, dir string) ([]string, error) {
	var paths []string
	for _, b := range batches {
		path := filepath.Join(dir, fmt.Sprintf("itbi_%s_processed.csv", b.Year))
		if err := WriteCSV(path, b.Table, csvDelimiter); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DatasetMetadata describes a consolidated dataset.
type DatasetMetadata struct {
	CreatedAt     time.Time      `json:"created_at"`
	TotalRecords  int            `json:"total_records"`
	TotalColumns  int            `json:"total_columns"`
	Columns       []string       `json:"columns"`
	NullCounts    map[string]int `json:"null_counts"`
	Years         []string       `json:"years"`
	RecordsByYear map[string]int `json:"records_by_year"`
}

func NewDatasetMetadata(t Table, now time.Time) DatasetMetadata {
	byYear := make(map[string]int)
	for _, y := range t.Column("source_year") {
		byYear[y]++
	}
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)

	return DatasetMetadata{
		CreatedAt:     now,
		TotalRecords:  t.Len(),
		TotalColumns:  len(t.Columns),
		Columns:       t.Columns,
		NullCounts:    t.NullCounts(),
		Years:         years,
		RecordsByYear: byYear,
	}
}

// SaveMetadata writes dataset_metadata.json into dir.
func SaveMetadata(t Table, dir string, now time.Time) (string, error) {
	path := filepath.Join(dir, "dataset_metadata.json")
	return path, WriteJSON(path, NewDatasetMetadata(t, now))
}

// WriteJSON writes v indented, creating the parent directory.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
