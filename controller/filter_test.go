package controller

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOrderFilter_FirstSamplePassesThrough(t *testing.T) {
	f := NewFirstOrderFilter(0.1, 0.01)
	assert.False(t, f.Initialized)

	out := f.Update(1234)
	assert.Equal(t, 1234.0, out)
	assert.True(t, f.Initialized)
}

func TestFirstOrderFilter_Smoothing(t *testing.T) {
	f := NewFirstOrderFilter(0.1, 0.01)
	f.Update(0)
	f.UpdateAlpha(0.5)

	assert.InDelta(t, 5.0, f.Update(10), 1e-9)
	assert.InDelta(t, 7.5, f.Update(10), 1e-9)
}

func TestFirstOrderFilter_DefaultAlpha(t *testing.T) {
	f := NewFirstOrderFilter(0.1, 0.01)
	assert.InDelta(t, 0.01/0.11, f.Alpha, 1e-12)
}

func TestFirstOrderFilter_AlphaClamped(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, minFilterAlpha},
		{-3, minFilterAlpha},
		{5, 1},
		{math.NaN(), 1},
		{0.25, 0.25},
	}

	for _, tt := range tests {
		var f FirstOrderFilter
		f.UpdateAlpha(tt.in)
		assert.Equal(t, tt.expected, f.Alpha, "UpdateAlpha(%v)", tt.in)
	}
}

func TestFirstOrderFilter_Reset(t *testing.T) {
	f := NewFirstOrderFilter(0.1, 0.01)
	f.Reset(2000)
	f.UpdateAlpha(0.5)
	assert.InDelta(t, 2050.0, f.Update(2100), 1e-9)
}
