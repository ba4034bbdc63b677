package controller

import (
	"context"
	"fmt"
	"time"
)

// Generation selects the vehicle platform variant.
type Generation int

const (
	GenerationA Generation = iota
	GenerationB
)

func (g Generation) String() string {
	switch g {
	case GenerationA:
		return "gen1"
	case GenerationB:
		return "gen2"
	default:
		return fmt.Sprintf("unknown(%d)", int(g))
	}
}

// ParseGeneration accepts "gen1"/"a" and "gen2"/"b".
func ParseGeneration(s string) (Generation, error) {
	switch s {
	case "gen1", "a", "A":
		return GenerationA, nil
	case "gen2", "b", "B":
		return GenerationB, nil
	default:
		return 0, fmt.Errorf("invalid generation: %q (must be 'gen1' or 'gen2')", s)
	}
}

// Config is resolved once at controller construction.
type Config struct {
	Generation        Generation
	TorqueInterceptor bool
	RadarInterceptor  bool
	Steer             SteerLimits
	AuxSteer          SteerLimits
	Period            time.Duration
}

// DefaultConfig returns the configuration of a car without interceptors.
func DefaultConfig(gen Generation) Config {
	return Config{
		Generation: gen,
		Steer:      DefaultSteerLimits(),
		AuxSteer:   DefaultAuxSteerLimits(),
		Period:     DefaultPeriod,
	}
}

// ResolveCapabilities turns on the interceptor paths installed on a
// generation A car, as recorded in the shared params. Other generations have
// no interceptor paths; any configured ones are cleared.
func ResolveCapabilities(ctx context.Context, params Params, cfg Config, logger Logger) Config {
	if logger == nil {
		logger = NopLogger{}
	}
	if cfg.Generation != GenerationA {
		if cfg.TorqueInterceptor || cfg.RadarInterceptor {
			logger.Warn("Ignoring interceptors configured for generation %s", cfg.Generation)
		}
		return withoutInterceptors(cfg)
	}

	r := paramReader{params: params, log: logger}
	if r.boolOr(ctx, ParamTorqueInterceptor, false) {
		logger.Info("Torque interceptor installed")
		cfg.TorqueInterceptor = true
	}
	if r.boolOr(ctx, ParamRadarInterceptor, false) {
		logger.Info("Radar interceptor installed")
		cfg.RadarInterceptor = true
	}
	return cfg
}

func withoutInterceptors(cfg Config) Config {
	cfg.TorqueInterceptor = false
	cfg.RadarInterceptor = false
	return cfg
}

// Controller synthesizes the actuation commands of one control cycle. It
// holds only immutable configuration; all cycle-to-cycle state lives in the
// State value passed through Step.
type Controller struct {
	cfg       Config
	params    paramReader
	log       Logger
	gen       generation
	cycleKeys []string
}

func New(ctx context.Context, cfg Config, params Params, logger Logger) *Controller {
	if logger == nil {
		logger = NopLogger{}
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}

	c := &Controller{
		cfg:    cfg,
		params: paramReader{params: params, log: logger},
		log:    logger,
	}

	c.cycleKeys = []string{ParamBlendedACC, ParamStockActive}

	switch cfg.Generation {
	case GenerationB:
		cfg = withoutInterceptors(cfg)
		c.cfg = cfg
		c.cycleKeys = append(c.cycleKeys, ParamExperimentalLongitudinal, ParamTransitionCounter)
		logger.Printf("Creating generation B controller")
		c.gen = &generationB{
			log:      logger,
			blender:  accBlender{params: c.params},
			accEvery: cyclesPer(accCommandPeriod, cfg.Period),
		}
	default:
		logger.Printf("Creating generation A controller (torque interceptor=%v, radar interceptor=%v)",
			cfg.TorqueInterceptor, cfg.RadarInterceptor)
		c.gen = &generationA{cfg: cfg, log: logger}
	}

	c.params.putInt(ctx, ParamTransitionCounter, 0)

	return c
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config {
	return c.cfg
}

// NewState returns a fresh state for this controller's period.
func (c *Controller) NewState() State {
	return NewState(c.cfg.Period)
}

// Step runs one control cycle. It limits steering, runs the generation
// specific longitudinal logic, appends the steering frame and advances every
// timer exactly once.
func (c *Controller) Step(ctx context.Context, st State, in Input) (State, Output) {
	applySteer, auxApplySteer := 0, 0
	if in.Actuators.LatActive {
		applySteer = ApplySteerTorqueLimits(c.cfg.Steer.Request(in.Actuators.Steer),
			st.LastApplySteer, in.Vehicle.SteeringTorque, c.cfg.Steer)

		if c.cfg.TorqueInterceptor && in.Vehicle.AuxSteerAllowed {
			auxApplySteer = ApplySteerTorqueLimits(c.cfg.AuxSteer.Request(in.Actuators.Steer),
				st.LastAuxApplySteer, in.Vehicle.SteeringTorque, c.cfg.AuxSteer)
		}
	}
	st.LastApplySteer = applySteer
	st.LastAuxApplySteer = auxApplySteer

	p := c.readCycleParams(ctx, in)

	cmds := make([]Command, 0, 4)
	cmds = c.gen.dispatch(ctx, &st, in, p, cmds)
	cmds = append(cmds, SteeringControl{
		Frame:         st.Frame,
		ApplySteer:    applySteer,
		AuxApplySteer: auxApplySteer,
	})

	out := Output{
		Commands: cmds,
		Actuators: ActuatorEcho{
			SteerOutputCan: applySteer,
		},
	}
	if c.cfg.Steer.Max != 0 {
		out.Actuators.Steer = float64(applySteer) / float64(c.cfg.Steer.Max)
	}

	st.tick()
	return st, out
}

// readCycleParams samples every key the cycle reads in one round trip where
// the store allows it.
func (c *Controller) readCycleParams(ctx context.Context, in Input) cycleParams {
	kv := c.params.fetch(ctx, c.cycleKeys...)
	p := cycleParams{
		blended:     kv.boolOr(ctx, ParamBlendedACC, false),
		stockActive: in.Vehicle.StockControlActive,
		kv:          kv,
	}
	if c.cfg.Generation == GenerationB {
		p.experimentalLong = kv.boolOr(ctx, ParamExperimentalLongitudinal, false)
	}
	if p.blended && !p.stockActive {
		p.stockActive = kv.boolOr(ctx, ParamStockActive, false)
	}
	return p
}
