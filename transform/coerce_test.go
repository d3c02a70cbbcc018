package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrazilianNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *float64
		wantErr bool
	}{
		{name: "thousands and decimals", input: "200.000,50", want: ptr(200000.50)},
		{name: "millions", input: "1.250.000,00", want: ptr(1250000.0)},
		{name: "decimal only", input: "50,5", want: ptr(50.5)},
		{name: "integer", input: " 150000 ", want: ptr(150000.0)},
		{name: "negative", input: "-1.000,25", want: ptr(-1000.25)},
		{name: "empty", input: "", want: nil},
		{name: "nan", input: "NaN", want: nil},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "exponent overflow", input: "1e400", wantErr: true},
		{name: "too many digits", input: strings.Repeat("9", 400), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBrazilianNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  *time.Time
	}{
		{input: "2024-06-15", want: &want},
		{input: "2024-06-15 13:45:00", want: &want},
		{input: "2024-06-15T13:45:00", want: &want},
		{input: "15/06/2024", want: &want},
		{input: "2024-13-01", want: nil},
		{input: "2024-6-15", want: nil},
		{input: "2024-02-30", want: nil},
		{input: "15/6/2024", want: nil},
		{input: "", want: nil},
		{input: "nan", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.input))
		})
	}
}

func TestParseYear(t *testing.T) {
	y := 2011
	assert.Equal(t, &y, ParseYear(" 2011 "))
	assert.Nil(t, ParseYear("20x1"))
	assert.Nil(t, ParseYear("2010.0"))
	assert.Nil(t, ParseYear(""))
}

func TestRepairEncoding(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         string
		wantRepaired bool
	}{
		{name: "mojibake", input: "GraÃ§as", want: "Graças", wantRepaired: true},
		{name: "lone lead byte", input: "VÃRZEA", want: "VÃRZEA", wantRepaired: false},
		{name: "already correct", input: "Graças", want: "Graças", wantRepaired: false},
		{name: "ascii", input: "Derby", want: "Derby", wantRepaired: false},
		{name: "not latin1 representable", input: "São Paulo ✓", want: "São Paulo ✓", wantRepaired: false},
		{name: "empty", input: "", want: "", wantRepaired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repaired := RepairEncoding(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRepaired, repaired)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
