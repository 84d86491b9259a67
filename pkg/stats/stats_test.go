package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		data []float64
		p    float64
		want float64
	}{
		{name: "p05", data: sorted, p: 0.05, want: 1.2},
		{name: "p25", data: sorted, p: 0.25, want: 2},
		{name: "median", data: sorted, p: 0.5, want: 3},
		{name: "p95", data: sorted, p: 0.95, want: 4.8},
		{name: "minimum", data: sorted, p: 0, want: 1},
		{name: "maximum", data: sorted, p: 1, want: 5},
		{name: "single value", data: []float64{7}, p: 0.75, want: 7},
		{name: "two values", data: []float64{10, 20}, p: 0.25, want: 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.data, tt.p), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestExtractSummaryStatistics(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}
	s := ExtractSummaryStatistics(data)

	assert.True(t, s.Valid)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	want := [5]float64{1.2, 2, 3, 4, 4.8}
	for i := range want {
		assert.InDelta(t, want[i], s.Percentiles[i], 1e-12, "percentile %v", PercentileLevels[i])
	}

	assert.Equal(t, []float64{5, 1, 4, 2, 3}, data, "input must not be reordered")
}

func TestExtractSummaryStatisticsSinglePoint(t *testing.T) {
	s := ExtractSummaryStatistics([]float64{42})

	assert.False(t, s.Valid)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 42.0, s.Min)
	assert.Equal(t, 42.0, s.Max)
	for _, p := range s.Percentiles {
		assert.Equal(t, 42.0, p)
	}
}

func TestExtractSummaryStatisticsEmpty(t *testing.T) {
	s := ExtractSummaryStatistics(nil)
	assert.False(t, s.Valid)
	assert.Zero(t, s.Count)
}

func TestMapToPercentiles(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{name: "ascending", in: []float64{1, 2, 3}, want: []float64{0, 0.5, 1}},
		{name: "unordered", in: []float64{30, 10, 20, 40, 0}, want: []float64{0.75, 0.25, 0.5, 1, 0}},
		{name: "ties keep original order", in: []float64{2, 1, 2, 1}, want: []float64{2.0 / 3, 0, 1, 1.0 / 3}},
		{name: "single element", in: []float64{9}, want: []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToPercentiles(tt.in)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12, "index %d", i)
			}
		})
	}

	assert.Nil(t, MapToPercentiles(nil))
}
