package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRe    = 100.0
	DefaultDt    = 0.01
	DefaultSteps = 100

	DefaultRingParticles = 64
	DefaultRefine        = 2
	DefaultTracers       = 20
)

// Vec is a 3-vector written as a yaml flow sequence.
type Vec [3]float64

type Config struct {
	Name    string          `yaml:"name"`
	Sim     SimConfig       `yaml:"sim"`
	Flow    []FlowConfig    `yaml:"flow"`
	Bodies  []BodyConfig    `yaml:"bodies"`
	Measure []MeasureConfig `yaml:"measure"`
}

type SimConfig struct {
	Re         float64 `yaml:"re"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Freestream Vec     `yaml:"freestream,flow"`
	// IPS, when set, overrides Re so that new particles get this spacing.
	IPS     float64 `yaml:"ips,omitempty"`
	Backend string  `yaml:"backend,omitempty"`
}

// FlowConfig describes initial vorticity: a vortex ring or a single blob.
type FlowConfig struct {
	Type        string  `yaml:"type"`
	Center      Vec     `yaml:"center,flow"`
	Normal      Vec     `yaml:"normal,flow,omitempty"`
	Radius      float64 `yaml:"radius,omitempty"`
	Circulation float64 `yaml:"circulation,omitempty"`
	Strength    Vec     `yaml:"strength,flow,omitempty"`
	N           int     `yaml:"n,omitempty"`
}

// BodyConfig describes a solid boundary discretized into reactive panels.
type BodyConfig struct {
	Name   string `yaml:"name"`
	Shape  string `yaml:"shape"`
	Center Vec    `yaml:"center,flow"`
	Scale  Vec    `yaml:"scale,flow"`
	Vel    Vec    `yaml:"vel,flow,omitempty"`
	RotVel Vec    `yaml:"rotvel,flow,omitempty"`
	Refine int    `yaml:"refine,omitempty"`
	// BCs is the number of boundary conditions per panel; 0 means 2.
	BCs int `yaml:"bcs,omitempty"`
}

// MeasureConfig describes a line of tracers.
type MeasureConfig struct {
	Type  string `yaml:"type"`
	Start Vec    `yaml:"start,flow"`
	End   Vec    `yaml:"end,flow"`
	N     int    `yaml:"n"`
}

var (
	flowTypes    = []string{"ring", "blob"}
	bodyShapes   = []string{"ovoid", "rect", "quad"}
	measureTypes = []string{"line"}
)

func DefaultConfig() *Config {
	return &Config{
		Name: "ring",
		Sim: SimConfig{
			Re:    DefaultRe,
			Dt:    DefaultDt,
			Steps: DefaultSteps,
		},
		Flow: []FlowConfig{{
			Type:        "ring",
			Normal:      Vec{0, 0, 1},
			Radius:      1,
			Circulation: 1,
			N:           DefaultRingParticles,
		}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Flow = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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
	if c.Sim.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %g", c.Sim.Dt)
	}
	if c.Sim.Re <= 0 && c.Sim.IPS <= 0 {
		return fmt.Errorf("re must be positive, got %g", c.Sim.Re)
	}
	if c.Sim.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", c.Sim.Steps)
	}
	for i, f := range c.Flow {
		if !contains(flowTypes, f.Type) {
			return fmt.Errorf("flow %d: unknown type %q (want one of %v)", i, f.Type, flowTypes)
		}
		if f.Type == "ring" && (f.Radius <= 0 || f.N < 3) {
			return fmt.Errorf("flow %d: ring needs a positive radius and at least 3 particles", i)
		}
	}
	for i, b := range c.Bodies {
		if !contains(bodyShapes, b.Shape) {
			return fmt.Errorf("body %d: unknown shape %q (want one of %v)", i, b.Shape, bodyShapes)
		}
		if b.BCs < 0 || b.BCs > 3 {
			return fmt.Errorf("body %d: bcs must be 1, 2 or 3, got %d", i, b.BCs)
		}
	}
	for i, m := range c.Measure {
		if !contains(measureTypes, m.Type) {
			return fmt.Errorf("measure %d: unknown type %q (want one of %v)", i, m.Type, measureTypes)
		}
		if m.N < 1 {
			return fmt.Errorf("measure %d: needs at least one point", i)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
