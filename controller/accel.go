package controller

import (
	"context"
	"math"
)

const (
	radarAccelScale = 1150.0
	radarAccelLimit = 1000.0
	radarAlphaScale = 1000.0

	accAccelScale  = 240.0
	accAccelOffset = 2000.0

	transitionAlphaScale = 500.0
	transitionAlphaFloor = 0.01
)

// cycleParams are the shared switches sampled once at the start of a cycle.
// kv answers later reads in the same cycle from that sample.
type cycleParams struct {
	blended          bool
	experimentalLong bool
	stockActive      bool
	kv               paramReader
}

// radarBlender computes the radar interceptor acceleration command. The
// filter alpha follows the size of the jump between the target and the last
// filtered value, so large changes are tracked quickly.
type radarBlender struct{}

func (radarBlender) blend(st *State, in Input, p cycleParams) float64 {
	stock := in.Vehicle.StockAccelCommand
	if !in.Actuators.LongActive {
		return stock
	}

	raw := clampFloat(in.Actuators.Accel*radarAccelScale, -radarAccelLimit, radarAccelLimit)
	if !p.blended {
		return raw
	}

	target := stock
	if p.stockActive {
		target = raw
	}
	st.Filter.UpdateAlpha(math.Abs(target-st.FilteredAccelLast) / radarAlphaScale)
	out := math.Trunc(st.Filter.Update(target))
	st.FilteredAccelLast = out
	return out
}

// accBlender computes the stock ACC acceleration command. Authority moves
// between the computed and the stock command over a ramp of
// TransitionCounterMax cycles tracked by the shared transition counter.
type accBlender struct {
	params paramReader
}

func (b accBlender) blend(ctx context.Context, st *State, in Input, p cycleParams) float64 {
	stock := in.Vehicle.StockAccelCommand

	counter := st.StockTransitionCounter
	if p.blended {
		counter = clampCounter(p.kv.intOr(ctx, ParamTransitionCounter, st.StockTransitionCounter))
	}

	raw := in.Actuators.Accel*accAccelScale + accAccelOffset
	if p.blended && counter == 0 && isResuming(in) {
		// hand back without a jump after a stock resume from idle
		raw = stock
	}

	out := raw
	if p.blended {
		read := counter
		switch {
		case p.stockActive:
			st.Filter.UpdateAlpha(float64(TransitionCounterMax-counter)/transitionAlphaScale + transitionAlphaFloor)
			out = math.Trunc(st.Filter.Update(raw))
			counter = clampCounter(counter + 1)
		case counter > 0:
			st.Filter.UpdateAlpha(float64(counter)/transitionAlphaScale + transitionAlphaFloor)
			out = math.Trunc(st.Filter.Update(stock))
			counter = clampCounter(counter - 1)
		default:
			out = stock
			st.Filter.Reset(stock)
		}

		if counter != read {
			b.params.putInt(ctx, ParamTransitionCounter, counter)
		}
		st.StockTransitionCounter = counter
		st.FilteredAccelLast = out
	}

	if p.experimentalLong && in.Actuators.LongActive {
		return out
	}
	return stock
}

func clampCounter(c int) int {
	if c < 0 {
		return 0
	}
	if c > TransitionCounterMax {
		return TransitionCounterMax
	}
	return c
}

// isResuming reports whether anything asks the car to move off from a stop.
func isResuming(in Input) bool {
	return in.Cruise.Resume ||
		in.Cruise.Override ||
		in.Vehicle.GasPressed ||
		in.Actuators.LongControlState == LongControlStarting ||
		in.Vehicle.StockResumeActive
}
