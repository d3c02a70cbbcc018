package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandsClassify(t *testing.T) {
	tests := []struct {
		name  string
		bands Bands
		input *float64
		want  string
	}{
		{name: "value null", bands: ValueBands, input: nil, want: NotInformed},
		{name: "value at low bound", bands: ValueBands, input: ptr(200000.0), want: "Low"},
		{name: "value just above low", bands: ValueBands, input: ptr(200000.01), want: "Medium"},
		{name: "value at medium bound", bands: ValueBands, input: ptr(500000.0), want: "Medium"},
		{name: "value at high bound", bands: ValueBands, input: ptr(1000000.0), want: "High"},
		{name: "value premium", bands: ValueBands, input: ptr(1000000.5), want: "Premium"},
		{name: "area small", bands: AreaBands, input: ptr(50.0), want: "Small"},
		{name: "area medium", bands: AreaBands, input: ptr(100.0), want: "Medium"},
		{name: "area large", bands: AreaBands, input: ptr(150.0), want: "Large"},
		{name: "area extra large", bands: AreaBands, input: ptr(200.5), want: "Extra-large"},
		{name: "area null", bands: AreaBands, input: nil, want: NotInformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bands.Classify(tt.input))
		})
	}
}

func TestConstructionPeriod(t *testing.T) {
	tests := []struct {
		year *int
		want string
	}{
		{year: ptr(1979), want: "Before 1980"},
		{year: ptr(1980), want: "1980-1999"},
		{year: ptr(1999), want: "1980-1999"},
		{year: ptr(2000), want: "2000-2009"},
		{year: ptr(2010), want: "2010-2019"},
		{year: ptr(2019), want: "2010-2019"},
		{year: ptr(2020), want: "2020 or later"},
		{year: nil, want: NotInformed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConstructionPeriod(tt.year))
	}
}

// Every input maps to exactly one band and the bands are visited in order.
func TestBandsPartition(t *testing.T) {
	for _, bands := range []Bands{ValueBands, AreaBands, PeriodBands} {
		assert.Len(t, bands.Labels, len(bands.Bounds)+1)
		for i := 1; i < len(bands.Bounds); i++ {
			assert.Less(t, bands.Bounds[i-1], bands.Bounds[i])
		}

		last := -1
		for v := 0.0; v <= bands.Bounds[len(bands.Bounds)-1]*2; v += bands.Bounds[0] / 7 {
			label := bands.Classify(&v)
			idx := indexOf(bands.Labels, label)
			assert.GreaterOrEqual(t, idx, last, "bands must be monotonic")
			last = idx
		}
		assert.Equal(t, len(bands.Labels)-1, last)
	}
}

func TestBandsCaseSQL(t *testing.T) {
	got := AreaBands.CaseSQL("area_construida")
	want := "CASE WHEN area_construida IS NULL THEN 'Not informed'" +
		" WHEN area_construida <= 50 THEN 'Small'" +
		" WHEN area_construida <= 100 THEN 'Medium'" +
		" WHEN area_construida <= 200 THEN 'Large'" +
		" ELSE 'Extra-large' END"
	assert.Equal(t, want, got)

	b := Bands{Bounds: []float64{0.5}, Labels: []string{"it's low", "high"}}
	assert.Contains(t, b.CaseSQL("x"), "WHEN x <= 0.5 THEN 'it''s low'")
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
