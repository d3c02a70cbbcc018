package extract

import (
	"errors"
	"fmt"
)

var ErrValidation = errors.New("validation failed")

// DefaultRequiredColumns are the columns every transform needs.
var DefaultRequiredColumns = []string{"valor_avaliacao", "bairro", "tipo_imovel", "data_transacao"}

// Validate stops the run when there is nothing to process or a frame
// lacks one of the required columns.
func Validate(frames []*Frame, required []string) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: no dataset extracted", ErrValidation)
	}

	var errs []error
	for _, f := range frames {
		if f.Len() == 0 {
			errs = append(errs, fmt.Errorf("%w: dataset %s is empty", ErrValidation, f.Year))
			continue
		}
		for _, col := range required {
			if !f.HasColumn(col) {
				errs = append(errs, fmt.Errorf("%w: dataset %s is missing column %q", ErrValidation, f.Year, col))
			}
		}
	}
	return errors.Join(errs...)
}

// YearSummary describes one extracted dataset.
type YearSummary struct {
	Year       string         `json:"year"`
	Records    int            `json:"records"`
	Columns    int            `json:"columns"`
	NullValues int            `json:"null_values"`
	NullCounts map[string]int `json:"null_counts"`
	ColumnList []string       `json:"column_names"`
}

// ExtractionSummary aggregates the per-year summaries.
type ExtractionSummary struct {
	TotalDatasets int           `json:"total_datasets"`
	TotalRecords  int           `json:"total_records"`
	Datasets      []YearSummary `json:"datasets"`
}

func Summary(frames []*Frame) ExtractionSummary {
	s := ExtractionSummary{TotalDatasets: len(frames)}
	for _, f := range frames {
		counts := f.Table().Project(f.Columns...).NullCounts()
		nulls := 0
		for _, n := range counts {
			nulls += n
		}
		s.Datasets = append(s.Datasets, YearSummary{
			Year:       f.Year,
			Records:    f.Len(),
			Columns:    len(f.Columns),
			NullValues: nulls,
			NullCounts: counts,
			ColumnList: f.Columns,
		})
		s.TotalRecords += f.Len()
	}
	return s
}
