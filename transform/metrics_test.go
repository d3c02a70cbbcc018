package transform

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValuePerArea(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		area  *float64
		want  *float64
	}{
		{name: "exact", value: 150000, area: ptr(50.0), want: ptr(3000.0)},
		{name: "rounded half away from zero", value: 1, area: ptr(8.0), want: ptr(0.13)},
		{name: "repeating", value: 100, area: ptr(3.0), want: ptr(33.33)},
		{name: "two thirds", value: 200, area: ptr(3.0), want: ptr(66.67)},
		{name: "zero area", value: 100, area: ptr(0.0), want: nil},
		{name: "negative area", value: 100, area: ptr(-1.0), want: nil},
		{name: "null area", value: 100, area: nil, want: nil},
		{name: "infinite area", value: 100, area: ptr(math.Inf(1)), want: nil},
		{name: "infinite value", value: math.Inf(1), area: ptr(10.0), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuePerArea(tt.value, tt.area))
		})
	}
}

func TestValuePerAreaRoundTrip(t *testing.T) {
	cases := [][2]float64{{150000, 50}, {327500.5, 73.2}, {1e6, 333}, {89999.99, 41.7}}
	for _, c := range cases {
		vpa := ValuePerArea(c[0], &c[1])
		if assert.NotNil(t, vpa) {
			assert.LessOrEqual(t, math.Abs(*vpa*c[1]-c[0]), 0.005*c[1]+1e-9)
		}
	}
}

func TestPropertyAge(t *testing.T) {
	assert.Equal(t, ptr(13), PropertyAge(ptr(2024), ptr(2011)))
	assert.Nil(t, PropertyAge(nil, ptr(2011)))
	assert.Nil(t, PropertyAge(ptr(2024), nil))
}

func TestHasFinancing(t *testing.T) {
	assert.False(t, HasFinancing(nil))
	assert.False(t, HasFinancing(ptr(0.0)))
	assert.True(t, HasFinancing(ptr(0.01)))
}

func TestQuarter(t *testing.T) {
	want := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}
	for m := 1; m <= 12; m++ {
		assert.Equal(t, want[m-1], Quarter(m))
	}
}

func TestDateParts(t *testing.T) {
	d := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)
	y, m, q := DateParts(&d)
	assert.Equal(t, 2024, *y)
	assert.Equal(t, 11, *m)
	assert.Equal(t, 4, *q)

	y, m, q = DateParts(nil)
	assert.Nil(t, y)
	assert.Nil(t, m)
	assert.Nil(t, q)
}
