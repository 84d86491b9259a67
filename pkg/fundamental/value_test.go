package fundamental

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name         string
		v            Value
		wantMissing  bool
		wantNaNMode  float64
		wantSentinel float64
		wantString   string
	}{
		{"present", Present(12.5), false, 12.5, 12.5, "12.5"},
		{"zero is present", Present(0), false, 0, 0, "0"},
		{"missing", Missing(), true, math.NaN(), MissingSentinel, "missing"},
		{"NaN is missing", Present(math.NaN()), true, math.NaN(), MissingSentinel, "missing"},
		{"infinity is missing", Present(math.Inf(-1)), true, math.NaN(), MissingSentinel, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMissing, tt.v.IsMissing())
			_, ok := tt.v.Get()
			assert.Equal(t, !tt.wantMissing, ok)

			got := tt.v.Float(MissingAsNaN)
			if math.IsNaN(tt.wantNaNMode) {
				assert.True(t, math.IsNaN(got))
			} else {
				assert.Equal(t, tt.wantNaNMode, got)
			}
			assert.Equal(t, tt.wantSentinel, tt.v.Float(MissingAsSentinel))
			assert.Equal(t, tt.wantString, tt.v.String())
		})
	}
}

func TestValueOr(t *testing.T) {
	assert.Equal(t, 3.0, Present(3).Or(7))
	assert.Equal(t, 7.0, Missing().Or(7))
}
