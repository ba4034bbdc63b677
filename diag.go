package main

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

const (
	diagGroupName           = "dbw"
	diagFaultSetKey         = "dbw:fault"
	diagEventStream         = "events:faults"
	diagEventStreamMaxLen   = 1000
	diagNotificationChannel = "dbw"
)

type DiagFault uint32

const (
	FaultNone DiagFault = iota
	FaultParamsUnavailable
	FaultBusPublishFailed
	FaultInputStale
)

type FaultSeverity int

const (
	SeverityWarning FaultSeverity = iota
	SeverityCritical
)

type FaultConfig struct {
	Code        DiagFault
	Description string
	Severity    FaultSeverity
}

var faultConfigs = map[DiagFault]FaultConfig{
	FaultParamsUnavailable: {FaultParamsUnavailable, "Shared params unavailable", SeverityWarning},
	FaultBusPublishFailed:  {FaultBusPublishFailed, "CAN publish failed", SeverityCritical},
	FaultInputStale:        {FaultInputStale, "Planner input stale", SeverityWarning},
}

func GetFaultConfig(fault DiagFault) (FaultConfig, bool) {
	config, ok := faultConfigs[fault]
	return config, ok
}

type Diag struct {
	log         *LeveledLogger
	redis       *redis.Client
	mu          sync.RWMutex
	faultStates map[DiagFault]bool
	ctx         context.Context
}

func NewDiag(logger *LeveledLogger, redis *redis.Client) *Diag {
	return &Diag{
		log:         logger,
		redis:       redis,
		faultStates: make(map[DiagFault]bool),
		ctx:         context.Background(),
	}
}

func (d *Diag) Destroy() {}

// SetFaultPresence records a fault transition. Repeated calls with the same
// presence are no-ops, so it is cheap to call every cycle.
func (d *Diag) SetFaultPresence(fault DiagFault, present bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if fault == FaultNone {
		return
	}

	wasPresent := d.faultStates[fault]
	if wasPresent == present {
		return
	}

	d.faultStates[fault] = present

	config, ok := GetFaultConfig(fault)
	if !ok {
		d.log.Warn("Unknown fault code: %d", fault)
		return
	}

	if present {
		d.log.Warn("Fault set: code=%d, description=%s", fault, config.Description)
		d.reportFaultPresent(fault, config)
	} else {
		d.log.Info("Fault cleared: code=%d, description=%s", fault, config.Description)
		d.reportFaultAbsent(fault)
	}
}

// FaultPresent reports the last recorded presence of a fault.
func (d *Diag) FaultPresent(fault DiagFault) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.faultStates[fault]
}

func (d *Diag) reportFaultPresent(fault DiagFault, config FaultConfig) {
	pipe := d.redis.Pipeline()

	pipe.SAdd(d.ctx, diagFaultSetKey, uint32(fault))

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: map[string]interface{}{
			"group":       diagGroupName,
			"code":        uint32(fault),
			"description": config.Description,
		},
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "fault")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report fault present: %v", err)
	}
}

func (d *Diag) reportFaultAbsent(fault DiagFault) {
	pipe := d.redis.Pipeline()

	pipe.SRem(d.ctx, diagFaultSetKey, uint32(fault))

	pipe.XAdd(d.ctx, &redis.XAddArgs{
		Stream: diagEventStream,
		MaxLen: diagEventStreamMaxLen,
		Values: map[string]interface{}{
			"group": diagGroupName,
			"code":  -int32(fault),
		},
	})

	pipe.Publish(d.ctx, diagNotificationChannel, "fault")

	if _, err := pipe.Exec(d.ctx); err != nil {
		d.log.Error("Failed to report fault absent: %v", err)
	}
}
