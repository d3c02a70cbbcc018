package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

func isMissing(s string) bool {
	return s == "" || strings.EqualFold(s, "nan")
}

// ParseBrazilianNumber parses numbers written with `.` as thousands separator
// and `,` as decimal separator. Empty and "nan" inputs are null without error.
func ParseBrazilianNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil, nil
	}

	normalized := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}

	f, _ := d.Float64()
	if !isFinite(f) {
		return nil, fmt.Errorf("invalid number %q: out of range", s)
	}
	return &f, nil
}

// ParseDate accepts ISO dates, ISO date-times and dd/mm/yyyy. Anything else is null.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// ParseYear parses an integer year. Invalid input is null.
func ParseYear(s string) *int {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &y
}

// RepairEncoding reverses UTF-8 text that was decoded as Latin-1 ("GraÃ§as" → "Graças").
// The input is returned unchanged when it cannot be re-encoded as Latin-1 or the
// resulting bytes are not valid UTF-8.
func RepairEncoding(s string) (string, bool) {
	if s == "" {
		return s, false
	}
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(latin1) || latin1 == s {
		return s, false
	}
	return latin1, true
}
