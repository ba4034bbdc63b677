package main

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"dbw-service/controller"

	"github.com/go-redis/redis/v8"
)

const (
	ipcCarControlKey = "carcontrol"
	ipcCarStateKey   = "carstate"

	// Planner intent older than this is treated as disengaged.
	IPCRxStaleTimeout = time.Second
)

// IPCRx caches the latest planner intent and vehicle state published on
// redis. The control loop reads the cache; it never waits on redis.
type IPCRx struct {
	log    *LeveledLogger
	redis  *redis.Client
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc

	input          controller.Input
	lastCarControl time.Time

	carControlSubscription *redis.PubSub
	carStateSubscription   *redis.PubSub
}

func NewIPCRx(logger *LeveledLogger, redis *redis.Client) *IPCRx {
	ctx, cancel := context.WithCancel(context.Background())

	rx := &IPCRx{
		log:    logger,
		redis:  redis,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := rx.setupSubscriptions(); err != nil {
		rx.log.Error("Failed to setup subscriptions: %v", err)
		rx.Destroy()
		return nil
	}

	rx.readInitialStates()

	return rx
}

func (rx *IPCRx) setupSubscriptions() error {
	rx.carControlSubscription = rx.redis.Subscribe(rx.ctx, ipcCarControlKey)
	if _, err := rx.carControlSubscription.Receive(rx.ctx); err != nil {
		return err
	}
	go rx.handleSubscription(rx.carControlSubscription, ipcCarControlKey, rx.handleCarControl)

	rx.carStateSubscription = rx.redis.Subscribe(rx.ctx, ipcCarStateKey)
	if _, err := rx.carStateSubscription.Receive(rx.ctx); err != nil {
		return err
	}
	go rx.handleSubscription(rx.carStateSubscription, ipcCarStateKey, rx.handleCarState)

	return nil
}

func (rx *IPCRx) handleSubscription(sub *redis.PubSub, key string, handle func(map[string]string)) {
	rx.log.Info("Starting %s subscription handler", key)

	for {
		msg, err := sub.Receive(rx.ctx)
		if err != nil {
			if rx.ctx.Err() != nil {
				return
			}
			// Check for closed client - panic to trigger systemd restart
			if err.Error() == "redis: client is closed" {
				rx.log.Error("Redis connection lost on %s subscription - restarting service", key)
				panic("Redis disconnected")
			}
			rx.log.Error("%s subscription error: %v", key, err)
			continue
		}

		switch m := msg.(type) {
		case *redis.Message:
			rx.log.Debug("%s message received: payload=%s", key, m.Payload)

			fields, err := rx.redis.HGetAll(rx.ctx, key).Result()
			if err != nil {
				rx.log.Error("Failed to get %s: %v", key, err)
				continue
			}
			handle(fields)

		case *redis.Subscription:
			rx.log.Debug("%s subscription event: %s %s", key, m.Channel, m.Kind)
		}
	}
}

func (rx *IPCRx) readInitialStates() {
	for key, handle := range map[string]func(map[string]string){
		ipcCarControlKey: rx.handleCarControl,
		ipcCarStateKey:   rx.handleCarState,
	} {
		fields, err := rx.redis.HGetAll(rx.ctx, key).Result()
		if err != nil {
			rx.log.Error("Failed to read initial %s: %v", key, err)
			continue
		}
		if len(fields) == 0 {
			rx.log.Info("No initial %s", key)
			continue
		}
		handle(fields)
	}
}

func (rx *IPCRx) handleCarControl(fields map[string]string) {
	actuators, cruise, hud := parseCarControl(fields)

	rx.mu.Lock()
	defer rx.mu.Unlock()

	rx.input.Actuators = actuators
	rx.input.Cruise = cruise
	rx.input.HUD = hud
	rx.lastCarControl = time.Now()
}

func (rx *IPCRx) handleCarState(fields map[string]string) {
	state := parseCarState(fields)

	rx.mu.Lock()
	defer rx.mu.Unlock()

	rx.input.Vehicle = state
}

// Snapshot returns the inputs for one cycle. A planner that stopped
// publishing is treated as disengaged.
func (rx *IPCRx) Snapshot(now time.Time) (controller.Input, bool) {
	rx.mu.RLock()
	defer rx.mu.RUnlock()

	in := rx.input
	stale := rx.lastCarControl.IsZero() || now.Sub(rx.lastCarControl) > IPCRxStaleTimeout
	if stale {
		in.Actuators = controller.ActuatorIntent{}
		in.Cruise = controller.CruiseControlIntent{}
	}
	return in, stale
}

func (rx *IPCRx) Destroy() {
	rx.mu.Lock()
	defer rx.mu.Unlock()

	if rx.cancel != nil {
		rx.cancel()
	}

	if rx.carControlSubscription != nil {
		rx.carControlSubscription.Close()
	}

	if rx.carStateSubscription != nil {
		rx.carStateSubscription.Close()
	}
}

func parseCarControl(fields map[string]string) (controller.ActuatorIntent, controller.CruiseControlIntent, controller.HUDControl) {
	actuators := controller.ActuatorIntent{
		Steer:      parseFloat(fields["steer"]),
		LatActive:  parseBool(fields["lat-active"]),
		LongActive: parseBool(fields["long-active"]),
		Accel:      parseFloat(fields["accel"]),
	}
	switch fields["long-control-state"] {
	case "starting":
		actuators.LongControlState = controller.LongControlStarting
	case "active", "pid":
		actuators.LongControlState = controller.LongControlActive
	case "stopping":
		actuators.LongControlState = controller.LongControlStopping
	default:
		actuators.LongControlState = controller.LongControlOff
	}

	cruise := controller.CruiseControlIntent{
		Cancel:   parseBool(fields["cruise-cancel"]),
		Resume:   parseBool(fields["cruise-resume"]),
		Override: parseBool(fields["cruise-override"]),
	}

	var hud controller.HUDControl
	switch fields["visual-alert"] {
	case "ldw":
		hud.VisualAlert = controller.VisualAlertLaneDeparture
	case "steer-required":
		hud.VisualAlert = controller.VisualAlertSteerRequired
	default:
		hud.VisualAlert = controller.VisualAlertNone
	}

	return actuators, cruise, hud
}

func parseCarState(fields map[string]string) controller.VehicleState {
	counter, _ := strconv.Atoi(fields["cruise-buttons-counter"])
	return controller.VehicleState{
		Standstill:          parseBool(fields["standstill"]),
		BrakePressed:        parseBool(fields["brake-pressed"]),
		GasPressed:          parseBool(fields["gas-pressed"]),
		SteeringTorque:      parseFloat(fields["steering-torque"]),
		StockResumeActive:   parseBool(fields["stock-resume"]),
		StockAccelCommand:   parseFloat(fields["stock-accel"]),
		StockControlActive:  parseBool(fields["stock-active"]),
		AuxSteerAllowed:     parseBool(fields["aux-steer-allowed"]),
		SteerAlertAllowed:   parseBool(fields["steer-alert-allowed"]),
		CruiseButtonCounter: counter,
	}
}

func parseBool(s string) bool {
	switch s {
	case "1", "true", "on":
		return true
	}
	return false
}

// parseFloat returns 0 for missing, malformed or non-finite values.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
