package controller

import "time"

// Timer is a duration window advanced by the controller's global tick.
// It is active while the time elapsed since the last Reset is below Duration.
type Timer struct {
	Duration time.Duration
	Elapsed  time.Duration
}

func NewTimer(d time.Duration) Timer {
	return Timer{Duration: d}
}

// NewLapsedTimer returns a timer whose window is already closed. Only a
// Reset opens it.
func NewLapsedTimer(d time.Duration) Timer {
	return Timer{Duration: d, Elapsed: d}
}

// Reset restarts the window.
func (t *Timer) Reset() {
	t.Elapsed = 0
}

// Tick advances the timer by one control period. Elapsed saturates at
// Duration so a long-lapsed timer never overflows.
func (t *Timer) Tick(dt time.Duration) {
	if t.Elapsed >= t.Duration {
		return
	}
	t.Elapsed += dt
}

// Active reports whether the window is still open.
func (t Timer) Active() bool {
	return t.Elapsed < t.Duration
}
