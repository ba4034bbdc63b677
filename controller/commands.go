package controller

import "fmt"

// CommandKind tags an outgoing command for the encoder.
type CommandKind int

const (
	KindSteeringControl CommandKind = iota
	KindButton
	KindAlert
	KindAuxiliaryAccel
	KindAcc
)

func (k CommandKind) String() string {
	switch k {
	case KindSteeringControl:
		return "steering-control"
	case KindButton:
		return "button"
	case KindAlert:
		return "alert"
	case KindAuxiliaryAccel:
		return "auxiliary-accel"
	case KindAcc:
		return "acc"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Command is one outgoing frame in semantic form.
type Command interface {
	Kind() CommandKind
}

// Button is a cruise button emulated on the bus.
type Button int

const (
	ButtonCancel Button = iota
	ButtonResume
)

func (b Button) String() string {
	if b == ButtonResume {
		return "resume"
	}
	return "cancel"
}

// SteeringControl carries the raw torque for the stock and auxiliary paths.
type SteeringControl struct {
	Frame         uint64
	ApplySteer    int
	AuxApplySteer int
}

func (SteeringControl) Kind() CommandKind { return KindSteeringControl }

// ButtonCommand emulates a cruise button press.
type ButtonCommand struct {
	Button  Button
	Counter int
}

func (ButtonCommand) Kind() CommandKind { return KindButton }

// AlertCommand drives the lane-keeping HUD.
type AlertCommand struct {
	LaneDeparture bool
	SteerRequired bool
}

func (AlertCommand) Kind() CommandKind { return KindAlert }

// AuxiliaryAccelCommand is sent to the radar interceptor.
type AuxiliaryAccelCommand struct {
	Frame      uint64
	LongActive bool
	Accel      float64
	Hold       bool
}

func (AuxiliaryAccelCommand) Kind() CommandKind { return KindAuxiliaryAccel }

// AccCommand replaces the stock ACC command frame.
type AccCommand struct {
	Accel  float64
	Hold   bool
	Resume bool
}

func (AccCommand) Kind() CommandKind { return KindAcc }
