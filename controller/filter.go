package controller

import "math"

const minFilterAlpha = 1e-3

// FirstOrderFilter is exponential smoothing with a coefficient that can be
// changed every cycle.
type FirstOrderFilter struct {
	Alpha       float64
	Output      float64
	Initialized bool
}

// NewFirstOrderFilter builds an uninitialized filter whose starting alpha
// matches a low-pass with time constant rc sampled every dt seconds.
func NewFirstOrderFilter(rc, dt float64) FirstOrderFilter {
	return FirstOrderFilter{Alpha: clampAlpha(dt / (rc + dt))}
}

// UpdateAlpha sets the coefficient used by the next Update, clamped to (0, 1].
func (f *FirstOrderFilter) UpdateAlpha(alpha float64) {
	f.Alpha = clampAlpha(alpha)
}

// Update feeds one sample. The first sample after construction passes
// through unchanged and seeds the filter.
func (f *FirstOrderFilter) Update(x float64) float64 {
	if !f.Initialized {
		f.Output = x
		f.Initialized = true
		return f.Output
	}
	f.Output = f.Alpha*x + (1-f.Alpha)*f.Output
	return f.Output
}

// Reset forces the filter output to x.
func (f *FirstOrderFilter) Reset(x float64) {
	f.Output = x
	f.Initialized = true
}

func clampAlpha(alpha float64) float64 {
	switch {
	case math.IsNaN(alpha):
		return 1
	case alpha > 1:
		return 1
	case alpha < minFilterAlpha:
		return minFilterAlpha
	}
	return alpha
}
