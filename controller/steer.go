package controller

import "math"

// SteerLimits bounds the raw steering torque sent on one torque path.
type SteerLimits struct {
	Max              int     `yaml:"max"`
	DeltaUp          int     `yaml:"delta_up"`
	DeltaDown        int     `yaml:"delta_down"`
	DriverAllowance  int     `yaml:"driver_allowance"`
	DriverMultiplier float64 `yaml:"driver_multiplier"`
	DriverFactor     float64 `yaml:"driver_factor"`
}

// DefaultSteerLimits returns the limits of the stock LKAS torque path.
func DefaultSteerLimits() SteerLimits {
	return SteerLimits{
		Max:              800,
		DeltaUp:          10,
		DeltaDown:        25,
		DriverAllowance:  15,
		DriverMultiplier: 1,
		DriverFactor:     1,
	}
}

// DefaultAuxSteerLimits returns the limits of the torque interceptor path.
func DefaultAuxSteerLimits() SteerLimits {
	return SteerLimits{
		Max:              1500,
		DeltaUp:          20,
		DeltaDown:        40,
		DriverAllowance:  15,
		DriverMultiplier: 1,
		DriverFactor:     1,
	}
}

// MaxRate is the largest change allowed between two consecutive cycles.
func (l SteerLimits) MaxRate() int {
	if l.DeltaDown > l.DeltaUp {
		return l.DeltaDown
	}
	return l.DeltaUp
}

// Request converts a normalized steer fraction into a raw torque request.
// Out of range or NaN fractions fall back to zero.
func (l SteerLimits) Request(fraction float64) int {
	if math.IsNaN(fraction) {
		return 0
	}
	fraction = clampFloat(fraction, -1, 1)
	return int(math.Round(fraction * float64(l.Max)))
}

// ApplySteerTorqueLimits limits a raw torque request by magnitude, by rate
// of change from last, and by the torque the driver applies against it.
// Growing magnitude moves at most DeltaUp per cycle, shrinking at most
// DeltaDown.
func ApplySteerTorqueLimits(target, last int, driverTorque float64, l SteerLimits) int {
	steerMax := float64(l.Max)
	allowance := float64(l.DriverAllowance)
	up := float64(l.DeltaUp)
	down := float64(l.DeltaDown)

	driverMax := steerMax + (allowance+driverTorque*l.DriverFactor)*l.DriverMultiplier
	driverMin := -steerMax + (-allowance+driverTorque*l.DriverFactor)*l.DriverMultiplier
	maxAllowed := math.Max(math.Min(steerMax, driverMax), 0)
	minAllowed := math.Min(math.Max(-steerMax, driverMin), 0)

	torque := clampFloat(float64(target), minAllowed, maxAllowed)

	prev := float64(last)
	if prev > 0 {
		torque = clampFloat(torque, math.Max(prev-down, -up), prev+up)
	} else {
		torque = clampFloat(torque, prev-up, math.Min(prev+down, up))
	}

	return int(math.Round(torque))
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
