package transform

import (
	"fmt"
	"strconv"
	"strings"
)

const NotInformed = "Not informed"

// Bands classifies a number into labelled intervals. Bounds are inclusive
// upper limits in ascending order; the last label takes everything above
// the last bound. A null input gets the NotInformed label.
type Bands struct {
	Bounds []float64
	Labels []string
}

var (
	// ValueBands buckets the assessed value in BRL.
	ValueBands = Bands{
		Bounds: []float64{200000, 500000, 1000000},
		Labels: []string{"Low", "Medium", "High", "Premium"},
	}

	// AreaBands buckets the built area in square meters.
	AreaBands = Bands{
		Bounds: []float64{50, 100, 200},
		Labels: []string{"Small", "Medium", "Large", "Extra-large"},
	}

	// PeriodBands buckets the construction year.
	PeriodBands = Bands{
		Bounds: []float64{1979, 1999, 2009, 2019},
		Labels: []string{"Before 1980", "1980-1999", "2000-2009", "2010-2019", "2020 or later"},
	}
)

func (b Bands) Classify(v *float64) string {
	if v == nil {
		return NotInformed
	}
	for i, bound := range b.Bounds {
		if *v <= bound {
			return b.Labels[i]
		}
	}
	return b.Labels[len(b.Labels)-1]
}

// CaseSQL renders the bands as a SQL CASE expression over column.
func (b Bands) CaseSQL(column string) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	fmt.Fprintf(&sb, " WHEN %s IS NULL THEN %s", column, quoteSQL(NotInformed))
	for i, bound := range b.Bounds {
		fmt.Fprintf(&sb, " WHEN %s <= %s THEN %s", column, strconv.FormatFloat(bound, 'f', -1, 64), quoteSQL(b.Labels[i]))
	}
	fmt.Fprintf(&sb, " ELSE %s END", quoteSQL(b.Labels[len(b.Labels)-1]))
	return sb.String()
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
