package controller

import "time"

// Timer durations.
const (
	HoldDuration        = 6 * time.Second
	HoldDelayDuration   = 500 * time.Millisecond
	ResumeDuration      = 500 * time.Millisecond
	CancelDelayDuration = 70 * time.Millisecond

	// DefaultPeriod is the nominal control loop period (100 Hz).
	DefaultPeriod = 10 * time.Millisecond

	// Transition ramp length in cycles.
	TransitionCounterMax = 20
)

// LongControlState is the planner's longitudinal control phase.
type LongControlState int

const (
	LongControlOff LongControlState = iota
	LongControlStarting
	LongControlActive
	LongControlStopping
)

// VisualAlert is the HUD alert requested by the planner.
type VisualAlert int

const (
	VisualAlertNone VisualAlert = iota
	VisualAlertLaneDeparture
	VisualAlertSteerRequired
)

// ActuatorIntent is the planner output for one cycle.
type ActuatorIntent struct {
	Steer            float64 // normalized, [-1, 1]
	LatActive        bool
	LongActive       bool
	Accel            float64 // m/s^2
	LongControlState LongControlState
}

// CruiseControlIntent carries the cruise button requests for one cycle.
type CruiseControlIntent struct {
	Cancel   bool
	Resume   bool
	Override bool
}

// HUDControl carries the planner's dashboard requests.
type HUDControl struct {
	VisualAlert VisualAlert
}

// VehicleState is the decoded vehicle snapshot. Signals a generation does
// not provide keep their zero value, which is also their documented default.
type VehicleState struct {
	Standstill         bool
	BrakePressed       bool
	GasPressed         bool
	SteeringTorque     float64
	StockResumeActive  bool
	StockAccelCommand  float64
	StockControlActive bool

	// AuxSteerAllowed reports that the torque interceptor accepts commands
	// this cycle. Default false.
	AuxSteerAllowed bool
	// SteerAlertAllowed reports that the current speed allows audible
	// steering alerts. Default false.
	SteerAlertAllowed bool
	// CruiseButtonCounter is the rolling counter of the stock button frame.
	CruiseButtonCounter int
}

// Input is everything the controller reads in one cycle.
type Input struct {
	Actuators ActuatorIntent
	Cruise    CruiseControlIntent
	HUD       HUDControl
	Vehicle   VehicleState
}

// ActuatorEcho reports the steering actually applied.
type ActuatorEcho struct {
	Steer          float64
	SteerOutputCan int
}

// Output is the result of one cycle.
type Output struct {
	Commands  []Command
	Actuators ActuatorEcho
}

// State is owned by the control loop and advanced once per cycle.
type State struct {
	Period time.Duration
	Frame  uint64

	LastApplySteer    int
	LastAuxApplySteer int

	BrakeDebounceCount int

	Filter            FirstOrderFilter
	FilteredAccelLast float64

	HoldTimer        Timer
	HoldDelayTimer   Timer
	ResumeTimer      Timer
	CancelDelayTimer Timer

	StockTransitionCounter int
}

// NewState returns the state of a freshly started controller: filter
// uninitialized, counters at zero, timers reset. The resume window starts
// closed so no resume is sent until a resume condition is seen.
func NewState(period time.Duration) State {
	if period <= 0 {
		period = DefaultPeriod
	}
	return State{
		Period:           period,
		Filter:           NewFirstOrderFilter(0.1, period.Seconds()),
		HoldTimer:        NewTimer(HoldDuration),
		HoldDelayTimer:   NewTimer(HoldDelayDuration),
		ResumeTimer:      NewLapsedTimer(ResumeDuration),
		CancelDelayTimer: NewTimer(CancelDelayDuration),
	}
}

// tick advances the frame counter and every timer by one period. It must be
// called exactly once per cycle.
func (s *State) tick() {
	s.Frame++
	s.HoldTimer.Tick(s.Period)
	s.HoldDelayTimer.Tick(s.Period)
	s.ResumeTimer.Tick(s.Period)
	s.CancelDelayTimer.Tick(s.Period)
}

// every reports whether the current frame falls on a dispatch interval of
// the given number of cycles.
func (s *State) every(cycles uint64) bool {
	if cycles <= 1 {
		return true
	}
	return s.Frame%cycles == 0
}
