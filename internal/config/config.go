// Package config holds the tuning parameters of the calculation engine
// and their YAML loading. Defaults follow the reference data the engine
// ships with; a config file and CLI flags can override them per run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights are the scoring weights of the resolver's post-selection
// optimization: fewer records, better reliability, transition coverage.
type Weights struct {
	Count       float64 `yaml:"count"`
	Reliability float64 `yaml:"reliability"`
	Transitions float64 `yaml:"transitions"`
}

// Config carries every tunable of the resolve/segment/accumulate
// pipeline. A Config value is read-only once handed to the engine;
// concurrent calculations may share one.
type Config struct {
	// GapTolerance is the widest coverage gap (K) bridged silently.
	GapTolerance float64 `yaml:"gap_tolerance"`
	// CriticalGap is the widest gap (K) bridged at all; gaps between
	// GapTolerance and CriticalGap attach an escalated warning, wider
	// ones fail the resolution.
	CriticalGap float64 `yaml:"critical_gap"`
	// TransitionTolerance is the window (K) within which a record
	// boundary is considered to sit on a phase transition.
	TransitionTolerance float64 `yaml:"transition_tolerance"`
	// CoeffTolerance is the per-coefficient equality tolerance used by
	// the virtual merge.
	CoeffTolerance float64 `yaml:"coeff_tolerance"`
	// QuadraturePoints is the sample count of the fixed-resolution
	// quadrature used for per-segment integration.
	QuadraturePoints int `yaml:"quadrature_points"`
	// FallbackTopN bounds the last-resort reliability fallback.
	FallbackTopN int     `yaml:"fallback_top_n"`
	Weights      Weights `yaml:"weights"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		GapTolerance:        1.0,
		CriticalGap:         10.0,
		TransitionTolerance: 10.0,
		CoeffTolerance:      1e-6,
		QuadraturePoints:    400,
		FallbackTopN:        5,
		Weights:             Weights{Count: 0.5, Reliability: 0.3, Transitions: 0.2},
	}
}

// Load reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configs the engine cannot run with.
func (c Config) Validate() error {
	if c.GapTolerance <= 0 {
		return fmt.Errorf("config: gap_tolerance must be positive, got %g", c.GapTolerance)
	}
	if c.CriticalGap < c.GapTolerance {
		return fmt.Errorf("config: critical_gap %g below gap_tolerance %g", c.CriticalGap, c.GapTolerance)
	}
	if c.QuadraturePoints < 2 {
		return fmt.Errorf("config: quadrature_points must be at least 2, got %d", c.QuadraturePoints)
	}
	if c.FallbackTopN < 1 {
		return fmt.Errorf("config: fallback_top_n must be at least 1, got %d", c.FallbackTopN)
	}
	return nil
}
