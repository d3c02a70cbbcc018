package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeInsights(t *testing.T) {
	ins := ComputeInsights(sampleRows(), 2)

	temporal := ins.Temporal
	assert.Equal(t, "2023", temporal.FirstYear)
	assert.Equal(t, "2024", temporal.LastYear)
	assert.Equal(t, 6, temporal.TotalTransactions)
	assert.InDelta(t, 350000, temporal.MeanValue, 1e-9)
	assert.Equal(t, "2023", temporal.MostActiveYear)
	assert.Equal(t, "2024", temporal.HighestValueYear)
	require.Len(t, temporal.ValueGrowth, 1)
	assert.Equal(t, "2024", temporal.ValueGrowth[0].Year)
	assert.InDelta(t, 150, temporal.ValueGrowth[0].Percent, 1e-9)
	require.Len(t, temporal.VolumeGrowth, 1)
	assert.InDelta(t, 0, temporal.VolumeGrowth[0].Percent, 1e-9)
	// January has 2 transactions in 2023 and 1 in 2024.
	assert.Equal(t, map[int]float64{1: 1.5, 2: 1, 3: 1}, temporal.Seasonality)
	assert.Equal(t, []int{1, 2, 3}, temporal.Months())

	geo := ins.Geographic
	assert.Equal(t, 3, geo.Neighborhoods)
	assert.Equal(t, "Derby", geo.MostActive.Key)
	assert.Equal(t, 3, geo.MostActive.Count)
	assert.Equal(t, "Boa Viagem", geo.MostValued.Key)
	require.Len(t, geo.Top, 2)
	assert.Equal(t, "Derby", geo.Top[0].Key)
	assert.InDelta(t, 100, geo.ConcentrationTop5, 1e-9)

	require.Len(t, ins.Segments.PropertyTypes, 3)
	assert.Equal(t, "Apartamento", ins.Segments.PropertyTypes[0].Key)
}

func TestComputeInsights_Empty(t *testing.T) {
	ins := ComputeInsights(nil, 5)
	assert.Equal(t, 0, ins.Temporal.TotalTransactions)
	assert.Empty(t, ins.Temporal.Years)
	assert.Equal(t, 0, ins.Geographic.Neighborhoods)
}

func TestWriteInsights(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInsights(&buf, ComputeInsights(sampleRows(), 5)))

	out := buf.String()
	assert.Contains(t, out, "Period: 2023-2024")
	assert.Contains(t, out, "Top neighborhoods")
	assert.Contains(t, out, "Boa Viagem")
	assert.Contains(t, out, "+150.0%")
}
