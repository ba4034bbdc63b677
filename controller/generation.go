package controller

import (
	"context"
	"time"
)

// Dispatch intervals in control cycles (at 100 Hz).
const (
	cancelButtonInterval   = 10 // 10 Hz
	resumeButtonInterval   = 5  // 20 Hz
	alertInterval          = 50 // 2 Hz
	auxiliaryAccelInterval = 2  // 50 Hz

	// A cancel while the brake is pressed waits this many cycles, and at
	// least CancelDelayDuration, so the stock system's own cancel handling can
	// settle first. The stock cruise frame runs at 50 Hz; 70 ms covers three
	// of them.
	brakeCancelDebounce = 7

	accCommandPeriod = 20 * time.Millisecond
)

// generation is the per-vehicle-generation half of a cycle: everything
// between steering limiting and the steering frame.
type generation interface {
	dispatch(ctx context.Context, st *State, in Input, p cycleParams, cmds []Command) []Command
}

// generationA drives cars where the stock ACC is commanded through emulated
// cruise buttons and, when fitted, a radar interceptor.
type generationA struct {
	cfg     Config
	log     Logger
	blender radarBlender
}

func (g *generationA) dispatch(ctx context.Context, st *State, in Input, p cycleParams, cmds []Command) []Command {
	if in.Cruise.Cancel {
		st.BrakeDebounceCount++
		if st.every(cancelButtonInterval) {
			if in.Vehicle.BrakePressed && (st.BrakeDebounceCount < brakeCancelDebounce || st.CancelDelayTimer.Active()) {
				g.log.Debug("cancel held back: %d cycles, %s into the cancel delay",
					st.BrakeDebounceCount, st.CancelDelayTimer.Elapsed)
			} else {
				cmds = append(cmds, ButtonCommand{Button: ButtonCancel, Counter: in.Vehicle.CruiseButtonCounter})
			}
		}
	} else {
		st.BrakeDebounceCount = 0
		st.CancelDelayTimer.Reset()
		// stop-and-go needs a resume press once the car has been stopped a while
		if in.Cruise.Resume && st.every(resumeButtonInterval) {
			cmds = append(cmds, ButtonCommand{Button: ButtonResume, Counter: in.Vehicle.CruiseButtonCounter})
		}
	}

	if st.every(alertInterval) {
		// TODO: add more alerts once the audible steer warning can be silenced
		cmds = append(cmds, AlertCommand{
			LaneDeparture: in.HUD.VisualAlert == VisualAlertLaneDeparture,
			SteerRequired: in.HUD.VisualAlert == VisualAlertSteerRequired && in.Vehicle.SteerAlertAllowed,
		})
	}

	if !g.cfg.RadarInterceptor {
		return cmds
	}

	hold := false
	if in.Vehicle.Standstill {
		hold = st.HoldTimer.Active()
	} else {
		st.HoldTimer.Reset()
	}

	accel := g.blender.blend(st, in, p)

	if st.every(auxiliaryAccelInterval) {
		cmds = append(cmds, AuxiliaryAccelCommand{
			Frame:      st.Frame,
			LongActive: in.Actuators.LongActive,
			Accel:      accel,
			Hold:       hold,
		})
	}
	return cmds
}

// generationB drives cars whose stock ACC frame is replaced outright.
type generationB struct {
	log        Logger
	blender    accBlender
	holdResume holdResume
	accEvery   uint64
}

func (g *generationB) dispatch(ctx context.Context, st *State, in Input, p cycleParams, cmds []Command) []Command {
	accel := g.blender.blend(ctx, st, in, p)

	if !st.every(g.accEvery) {
		return cmds
	}

	hold, resume := g.holdResume.update(st, in.Vehicle.Standstill, isResuming(in))
	return append(cmds, AccCommand{
		Accel:  accel,
		Hold:   hold,
		Resume: resume,
	})
}

// cyclesPer returns how many control periods make up d, at least one.
func cyclesPer(d, period time.Duration) uint64 {
	if period <= 0 {
		return 1
	}
	n := (d + period/2) / period
	if n < 1 {
		return 1
	}
	return uint64(n)
}
