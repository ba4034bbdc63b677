package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_ActiveUntilDuration(t *testing.T) {
	tm := NewTimer(500 * time.Millisecond)
	assert.True(t, tm.Active(), "fresh timer should be active")

	for i := 0; i < 49; i++ {
		tm.Tick(10 * time.Millisecond)
	}
	assert.True(t, tm.Active(), "490ms into a 500ms window")

	tm.Tick(10 * time.Millisecond)
	assert.False(t, tm.Active(), "window should close at 500ms")
}

func TestTimer_Reset(t *testing.T) {
	tm := NewTimer(70 * time.Millisecond)
	for i := 0; i < 10; i++ {
		tm.Tick(10 * time.Millisecond)
	}
	assert.False(t, tm.Active())

	tm.Reset()
	assert.True(t, tm.Active())
	assert.Equal(t, time.Duration(0), tm.Elapsed)
}

func TestTimer_Saturates(t *testing.T) {
	tm := NewTimer(70 * time.Millisecond)
	for i := 0; i < 1000; i++ {
		tm.Tick(10 * time.Millisecond)
	}
	assert.Equal(t, 70*time.Millisecond, tm.Elapsed)
	assert.False(t, tm.Active())
}

func TestState_TickAdvancesAllTimers(t *testing.T) {
	st := NewState(10 * time.Millisecond)
	st.tick()

	assert.Equal(t, uint64(1), st.Frame)
	for name, tm := range map[string]Timer{
		"hold":         st.HoldTimer,
		"hold-delay":   st.HoldDelayTimer,
		"cancel-delay": st.CancelDelayTimer,
	} {
		assert.Equal(t, 10*time.Millisecond, tm.Elapsed, name)
	}
	assert.False(t, st.ResumeTimer.Active(), "resume window starts closed")

	st.ResumeTimer.Reset()
	st.tick()
	assert.Equal(t, 10*time.Millisecond, st.ResumeTimer.Elapsed)
}

func TestTimer_LapsedStartsClosed(t *testing.T) {
	tm := NewLapsedTimer(500 * time.Millisecond)
	assert.False(t, tm.Active())

	tm.Tick(10 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, tm.Elapsed)

	tm.Reset()
	assert.True(t, tm.Active())
}

func TestCyclesPer(t *testing.T) {
	assert.Equal(t, uint64(2), cyclesPer(20*time.Millisecond, 10*time.Millisecond))
	assert.Equal(t, uint64(1), cyclesPer(20*time.Millisecond, 50*time.Millisecond))
	assert.Equal(t, uint64(4), cyclesPer(20*time.Millisecond, 5*time.Millisecond))
	assert.Equal(t, uint64(1), cyclesPer(20*time.Millisecond, 0))
}
