package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivesim/internal/body"
	"github.com/san-kum/drivesim/internal/loop"
	"github.com/san-kum/drivesim/internal/npc"
	"github.com/san-kum/drivesim/internal/stability"
	"github.com/san-kum/drivesim/internal/vehicle"
)

const (
	DefaultDuration  = 30.0
	DefaultFrameRate = 60
	DefaultDataDir   = ".drivesim"

	maxSpeedHeadroom = 1.1
)

// Config is the full tunable surface of a simulation: scheduler timing,
// vehicle control constants, stability thresholds, reference-body
// parameters, and traffic. Components hold references into it, so edits
// take effect on the next fixed step.
type Config struct {
	Loop      loop.Config      `yaml:"loop"`
	Vehicle   vehicle.Config   `yaml:"vehicle"`
	Stability stability.Config `yaml:"stability"`
	Body      body.Params      `yaml:"body"`
	Traffic   npc.Config       `yaml:"traffic"`

	// Duration bounds headless runs, seconds.
	Duration float64 `yaml:"duration"`
	// FrameRate is the simulated display refresh for headless runs, Hz.
	FrameRate int `yaml:"frame_rate"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Loop:      loop.DefaultConfig(),
		Vehicle:   vehicle.DefaultConfig(),
		Stability: stability.DefaultConfig(),
		Body:      body.DefaultParams(),
		Traffic:   npc.DefaultConfig(),
		Duration:  DefaultDuration,
		FrameRate: DefaultFrameRate,
	}
	// The hard velocity cap tracks the vehicle's top speed with headroom.
	cfg.Stability.MaxVel = cfg.Vehicle.MaxSpeedApprox * maxSpeedHeadroom
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Loop.Validate(); err != nil {
		return err
	}
	if err := c.Vehicle.Validate(); err != nil {
		return err
	}
	return c.Stability.Validate()
}
