package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"
)

const (
	ipcOutputKey = "carcontrol:output"
	ipcInfoKey   = "dbw"
)

type IPCTx struct {
	log   *LeveledLogger
	redis *redis.Client
	mu    sync.Mutex
	ctx   context.Context
}

func NewIPCTx(logger *LeveledLogger, redis *redis.Client) *IPCTx {
	return &IPCTx{
		log:   logger,
		redis: redis,
		ctx:   context.Background(),
	}
}

func (tx *IPCTx) Destroy() {}

// SendActuators publishes the steering actually applied this cycle.
func (tx *IPCTx) SendActuators(ctx context.Context, data RedisActuatorOutput) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	pipe := tx.redis.Pipeline()

	pipe.HSet(ctx, ipcOutputKey, map[string]interface{}{
		"steer":            strconv.FormatFloat(data.Steer, 'f', 4, 64),
		"steer-output-can": data.SteerOutputCan,
	})
	pipe.Publish(ctx, ipcOutputKey, "actuators")

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to send actuators: %w", err)
	}
	return nil
}

// SendControllerInfo records the resolved controller configuration.
func (tx *IPCTx) SendControllerInfo(data RedisControllerInfo) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	pipe := tx.redis.Pipeline()

	pipe.HSet(tx.ctx, ipcInfoKey, map[string]interface{}{
		"run-id":             data.RunID,
		"generation":         data.Generation,
		"torque-interceptor": onOff(data.TorqueInterceptor),
		"radar-interceptor":  onOff(data.RadarInterceptor),
		"period-ms":          data.PeriodMs,
	})
	pipe.Publish(tx.ctx, ipcInfoKey, "info")

	if _, err := pipe.Exec(tx.ctx); err != nil {
		return fmt.Errorf("failed to send controller info: %w", err)
	}
	return nil
}

func onOff(b bool) string {
	return map[bool]string{true: "on", false: "off"}[b]
}
