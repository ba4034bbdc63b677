package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func longInput(accel, stock float64) Input {
	return Input{
		Actuators: ActuatorIntent{LongActive: true, Accel: accel},
		Vehicle:   VehicleState{StockAccelCommand: stock},
	}
}

// --- radar interceptor blender ---

func TestRadarBlender_InactivePassesStock(t *testing.T) {
	st := NewState(DefaultPeriod)
	in := longInput(1, 321)
	in.Actuators.LongActive = false

	assert.Equal(t, 321.0, radarBlender{}.blend(&st, in, cycleParams{blended: true}))
}

func TestRadarBlender_RawClamped(t *testing.T) {
	st := NewState(DefaultPeriod)

	assert.InDelta(t, 575.0, radarBlender{}.blend(&st, longInput(0.5, 0), cycleParams{}), 1e-9)
	assert.Equal(t, 1000.0, radarBlender{}.blend(&st, longInput(2, 0), cycleParams{}))
	assert.Equal(t, -1000.0, radarBlender{}.blend(&st, longInput(-3, 0), cycleParams{}))
}

func TestRadarBlender_BlendedFollowsComputedWhenStockActive(t *testing.T) {
	st := NewState(DefaultPeriod)
	p := cycleParams{blended: true, stockActive: true}

	// first sample seeds the filter
	out := radarBlender{}.blend(&st, longInput(0.5, 100), p)
	assert.Equal(t, 575.0, out)
	assert.Equal(t, 575.0, st.FilteredAccelLast)

	// |690 - 575| / 1000 = 0.115
	out = radarBlender{}.blend(&st, longInput(0.6, 100), p)
	assert.InDelta(t, 0.115, st.Filter.Alpha, 1e-9)
	// 0.115 * 690 + 0.885 * 575 = 588.225
	assert.Equal(t, 588.0, out)
}

func TestRadarBlender_BlendedReturnsToStock(t *testing.T) {
	st := NewState(DefaultPeriod)
	st.Filter.Reset(500)
	st.FilteredAccelLast = 500

	out := radarBlender{}.blend(&st, longInput(0.5, 0), cycleParams{blended: true})
	// alpha = 0.5, halfway to the stock value
	assert.InDelta(t, 0.5, st.Filter.Alpha, 1e-9)
	assert.Equal(t, 250.0, out)
}

// --- stock ACC blender ---

func newTestAccBlender(params Params) accBlender {
	return accBlender{params: paramReader{params: params, log: &testLogger{}}}
}

func TestAccBlender_Unblended(t *testing.T) {
	b := newTestAccBlender(NewMemoryParams())
	st := NewState(DefaultPeriod)

	// computed value only reaches the frame with experimental longitudinal on
	assert.Equal(t, 2240.0, b.blend(context.Background(), &st, longInput(1, 1990), cycleParams{experimentalLong: true}))
	assert.Equal(t, 1990.0, b.blend(context.Background(), &st, longInput(1, 1990), cycleParams{}))

	in := longInput(1, 1990)
	in.Actuators.LongActive = false
	assert.Equal(t, 1990.0, b.blend(context.Background(), &st, in, cycleParams{experimentalLong: true}))
}

func TestAccBlender_RampUpWhileStockActive(t *testing.T) {
	params := NewMemoryParams()
	b := newTestAccBlender(params)
	st := NewState(DefaultPeriod)
	p := cycleParams{blended: true, stockActive: true, experimentalLong: true}

	for i := 0; i < TransitionCounterMax+5; i++ {
		b.blend(context.Background(), &st, longInput(0, 2000), p)

		expected := i + 1
		if expected > TransitionCounterMax {
			expected = TransitionCounterMax
		}
		require.Equal(t, expected, st.StockTransitionCounter, "cycle %d", i)

		stored, err := params.GetInt(context.Background(), ParamTransitionCounter)
		require.NoError(t, err)
		require.Equal(t, expected, stored)
	}
}

func TestAccBlender_RampDownThenBypass(t *testing.T) {
	params := NewMemoryParams()
	require.NoError(t, params.PutInt(context.Background(), ParamTransitionCounter, 3))
	b := newTestAccBlender(params)
	st := NewState(DefaultPeriod)
	st.Filter.Reset(2000)
	p := cycleParams{blended: true, experimentalLong: true, kv: b.params}

	// counter 3: alpha = 3/500 + 0.01
	out := b.blend(context.Background(), &st, longInput(0, 2510), p)
	assert.InDelta(t, 0.016, st.Filter.Alpha, 1e-9)
	// 0.016 * 2510 + 0.984 * 2000 = 2008.16
	assert.Equal(t, 2008.0, out)
	assert.Equal(t, 2, st.StockTransitionCounter)

	b.blend(context.Background(), &st, longInput(0, 2510), p)
	b.blend(context.Background(), &st, longInput(0, 2510), p)
	assert.Equal(t, 0, st.StockTransitionCounter)

	// counter at zero: stock value directly, filter re-seeded
	out = b.blend(context.Background(), &st, longInput(0, 2510), p)
	assert.Equal(t, 2510.0, out)
	assert.Equal(t, 2510.0, st.Filter.Output)
	assert.Equal(t, 0, st.StockTransitionCounter)
}

func TestAccBlender_ResumeFromIdleUsesStock(t *testing.T) {
	p := cycleParams{blended: true, stockActive: true, experimentalLong: true}

	st := NewState(DefaultPeriod)
	st.Filter.Reset(1003)
	in := longInput(1, 2110)
	out := newTestAccBlender(NewMemoryParams()).blend(context.Background(), &st, in, p)
	// 0.05 * 2240 + 0.95 * 1003 = 1064.85
	assert.Equal(t, 1064.0, out)

	st = NewState(DefaultPeriod)
	st.Filter.Reset(1003)
	in.Cruise.Resume = true
	out = newTestAccBlender(NewMemoryParams()).blend(context.Background(), &st, in, p)
	// 0.05 * 2110 + 0.95 * 1003 = 1058.35
	assert.Equal(t, 1058.0, out)
}

func TestAccBlender_CounterClampedOnRead(t *testing.T) {
	params := NewMemoryParams()
	require.NoError(t, params.PutInt(context.Background(), ParamTransitionCounter, 57))
	b := newTestAccBlender(params)
	st := NewState(DefaultPeriod)

	b.blend(context.Background(), &st, longInput(0, 2000), cycleParams{blended: true, stockActive: true, kv: b.params})
	assert.Equal(t, TransitionCounterMax, st.StockTransitionCounter)
}

func TestIsResuming(t *testing.T) {
	assert.False(t, isResuming(Input{}))
	assert.True(t, isResuming(Input{Cruise: CruiseControlIntent{Resume: true}}))
	assert.True(t, isResuming(Input{Cruise: CruiseControlIntent{Override: true}}))
	assert.True(t, isResuming(Input{Vehicle: VehicleState{GasPressed: true}}))
	assert.True(t, isResuming(Input{Vehicle: VehicleState{StockResumeActive: true}}))
	assert.True(t, isResuming(Input{Actuators: ActuatorIntent{LongControlState: LongControlStarting}}))
	assert.False(t, isResuming(Input{Actuators: ActuatorIntent{LongControlState: LongControlStopping}}))
}
