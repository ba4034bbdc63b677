package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dbw-service/controller"

	"github.com/brutella/can"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ControllerApp struct {
	log    *LeveledLogger
	redis  *redis.Client
	params *RedisParams
	ipcRx  *IPCRx
	ipcTx  *IPCTx
	diag   *Diag
	bus    *can.Bus
	canTx  *CANTx
	ctrl   *controller.Controller
	runID  string
	mu     sync.Mutex
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func NewControllerApp(opts *Options, vehicle VehicleConfig) (*ControllerApp, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger, err := NewLeveledLogger(ProjectName, opts.LogLevel)
	if err != nil {
		cancel()
		return nil, err
	}

	app := &ControllerApp{
		log:    logger,
		runID:  uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
	}

	// Initialize Redis client with timeouts
	app.redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.RedisServerAddr, opts.RedisServerPort),
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	app.log.Info("Connecting to Redis at %s:%d...", opts.RedisServerAddr, opts.RedisServerPort)

	if err := app.redis.Ping(connectCtx).Err(); err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.log.Info("Successfully connected to Redis")

	app.params = NewRedisParams(app.redis, paramsHashKey, 0)
	app.ipcTx = NewIPCTx(app.log, app.redis)
	app.diag = NewDiag(app.log, app.redis)

	cfg, err := vehicle.ControllerConfig()
	if err != nil {
		app.Destroy()
		return nil, err
	}
	if opts.Generation != nil {
		cfg.Generation = *opts.Generation
	}
	if opts.Period > 0 {
		cfg.Period = opts.Period
	}

	// Capability params are read once; give them the connect timeout.
	cfg = controller.ResolveCapabilities(connectCtx, NewRedisParams(app.redis, paramsHashKey, time.Second), cfg, app.log)
	app.ctrl = controller.New(ctx, cfg, app.params, app.log)
	app.log.Info("Controller %s initialized - generation %s, period %s", app.runID, cfg.Generation, cfg.Period)

	if err := app.ipcTx.SendControllerInfo(RedisControllerInfo{
		RunID:             app.runID,
		Generation:        cfg.Generation.String(),
		TorqueInterceptor: cfg.TorqueInterceptor,
		RadarInterceptor:  cfg.RadarInterceptor,
		PeriodMs:          cfg.Period.Milliseconds(),
	}); err != nil {
		app.log.Warn("Failed to send controller info: %v", err)
	}

	// Initialize CAN bus
	bus, err := can.NewBusForInterfaceWithName(opts.CANDevice)
	if err != nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to initialize CAN bus: %w", err)
	}
	app.bus = bus
	app.canTx = NewCANTx(app.log, bus, NewRawEncoder(vehicle.Frames))

	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			app.log.Error("CAN bus publish error: %v", err)
		}
	}()

	app.ipcRx = NewIPCRx(app.log, app.redis)
	if app.ipcRx == nil {
		app.Destroy()
		return nil, fmt.Errorf("failed to initialize IPC RX")
	}
	app.log.Info("IPC RX component initialized")

	app.group.Go(app.redisHealthCheck)
	app.group.Go(func() error { return app.controlLoop(cfg.Period) })

	return app, nil
}

// controlLoop runs one controller cycle per period until shutdown.
func (app *ControllerApp) controlLoop(period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	state := app.ctrl.NewState()
	for {
		select {
		case <-app.ctx.Done():
			return nil
		case now := <-ticker.C:
			state = app.cycle(now, state)
		}
	}
}

func (app *ControllerApp) cycle(now time.Time, state controller.State) controller.State {
	in, stale := app.ipcRx.Snapshot(now)
	app.diag.SetFaultPresence(FaultInputStale, stale)

	state, out := app.ctrl.Step(app.ctx, state, in)

	err := app.canTx.Send(out.Commands)
	if err != nil {
		app.log.Error("Failed to send commands: %v", err)
	}
	app.diag.SetFaultPresence(FaultBusPublishFailed, err != nil)

	ctx, cancel := context.WithTimeout(app.ctx, state.Period)
	if err := app.ipcTx.SendActuators(ctx, RedisActuatorOutput{
		Steer:          out.Actuators.Steer,
		SteerOutputCan: out.Actuators.SteerOutputCan,
	}); err != nil {
		app.log.Debug("Failed to send actuators: %v", err)
	}
	cancel()

	app.diag.SetFaultPresence(FaultParamsUnavailable, app.params.Err() != nil)

	return state
}

func (app *ControllerApp) redisHealthCheck() error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return nil
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(app.ctx, 2*time.Second)
			if err := app.redis.Ping(ctx).Err(); err != nil {
				app.log.Warn("Redis health check failed: %v", err)
			}
			cancel()
		}
	}
}

func (app *ControllerApp) Destroy() {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.log.Info("Shutting down controller application...")

	if app.cancel != nil {
		app.cancel()
	}
	if err := app.group.Wait(); err != nil {
		app.log.Error("Worker exited with error: %v", err)
	}
	app.log.Info("Control loop stopped")

	if app.ipcRx != nil {
		app.ipcRx.Destroy()
		app.log.Info("IPC RX shutdown complete")
	}

	if app.bus != nil {
		if err := app.bus.Disconnect(); err != nil {
			app.log.Warn("Error disconnecting CAN bus: %v", err)
		}
		app.log.Info("CAN bus shutdown complete")
	}

	if app.diag != nil {
		app.diag.Destroy()
	}

	if app.ipcTx != nil {
		app.ipcTx.Destroy()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.log.Error("Error closing Redis connection: %v", err)
		} else {
			app.log.Info("Redis connection closed")
		}
	}

	app.log.Info("Controller application shutdown complete")
	app.log.Sync()
}
