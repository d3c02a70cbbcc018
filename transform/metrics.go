package transform

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ValuePerArea is value/area rounded half away from zero to 2 decimals, or nil when area is not positive.
func ValuePerArea(value float64, area *float64) *float64 {
	if area == nil || *area <= 0 || !isFinite(value) || !isFinite(*area) {
		return nil
	}
	v, _ := decimal.NewFromFloat(value).Div(decimal.NewFromFloat(*area)).Round(2).Float64()
	return &v
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func PropertyAge(transactionYear, constructionYear *int) *int {
	if transactionYear == nil || constructionYear == nil {
		return nil
	}
	age := *transactionYear - *constructionYear
	return &age
}

func HasFinancing(amount *float64) bool {
	return amount != nil && *amount > 0
}

func ValueBucket(value *float64) string {
	return ValueBands.Classify(value)
}

func AreaBucket(builtArea *float64) string {
	return AreaBands.Classify(builtArea)
}

func ConstructionPeriod(year *int) string {
	if year == nil {
		return PeriodBands.Classify(nil)
	}
	f := float64(*year)
	return PeriodBands.Classify(&f)
}

// Quarter of a month in 1..12.
func Quarter(month int) int {
	return (month-1)/3 + 1
}

// DateParts returns year, month and quarter of d, all nil when d is nil.
func DateParts(d *time.Time) (year, month, quarter *int) {
	if d == nil {
		return nil, nil, nil
	}
	y, m := d.Year(), int(d.Month())
	q := Quarter(m)
	return &y, &m, &q
}
