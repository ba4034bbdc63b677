package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dbw-service/controller"

	"gopkg.in/yaml.v3"
)

// FrameIDs maps each outgoing command kind to its CAN arbitration ID.
type FrameIDs struct {
	Steering uint32 `yaml:"steering"`
	Buttons  uint32 `yaml:"buttons"`
	Alert    uint32 `yaml:"alert"`
	Radar    uint32 `yaml:"radar"`
	Acc      uint32 `yaml:"acc"`
}

// VehicleConfig is the on-disk vehicle description.
type VehicleConfig struct {
	Generation        string                 `yaml:"generation"`
	TorqueInterceptor bool                   `yaml:"torque_interceptor"`
	RadarInterceptor  bool                   `yaml:"radar_interceptor"`
	Period            time.Duration          `yaml:"period"`
	Steer             controller.SteerLimits `yaml:"steer"`
	AuxSteer          controller.SteerLimits `yaml:"aux_steer"`
	Frames            FrameIDs               `yaml:"frames"`
}

func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{
		Generation: controller.GenerationB.String(),
		Period:     controller.DefaultPeriod,
		Steer:      controller.DefaultSteerLimits(),
		AuxSteer:   controller.DefaultAuxSteerLimits(),
		Frames: FrameIDs{
			Steering: 0x243,
			Buttons:  0x09D,
			Alert:    0x440,
			Radar:    0x21B,
			Acc:      0x220,
		},
	}
}

// LoadVehicleConfig reads the YAML file at path on top of the defaults. An
// empty path or a missing file yields the defaults.
func LoadVehicleConfig(path string) (VehicleConfig, error) {
	cfg := DefaultVehicleConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c VehicleConfig) Validate() error {
	if _, err := controller.ParseGeneration(c.Generation); err != nil {
		return err
	}
	if c.Period <= 0 {
		return fmt.Errorf("period must be positive, got %s", c.Period)
	}
	for name, l := range map[string]controller.SteerLimits{"steer": c.Steer, "aux_steer": c.AuxSteer} {
		if l.Max <= 0 || l.DeltaUp <= 0 || l.DeltaDown <= 0 {
			return fmt.Errorf("%s: max and deltas must be positive", name)
		}
	}
	return nil
}

// ControllerConfig converts the file form into the controller's config.
func (c VehicleConfig) ControllerConfig() (controller.Config, error) {
	gen, err := controller.ParseGeneration(c.Generation)
	if err != nil {
		return controller.Config{}, err
	}
	return controller.Config{
		Generation:        gen,
		TorqueInterceptor: c.TorqueInterceptor,
		RadarInterceptor:  c.RadarInterceptor,
		Steer:             c.Steer,
		AuxSteer:          c.AuxSteer,
		Period:            c.Period,
	}, nil
}
