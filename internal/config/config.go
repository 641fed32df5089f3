// Package config holds the yaml-backed run configuration and named presets.
// Values use the units people quote them in (parsec, nanogauss, EeV); the
// builders convert to SI before handing them to the engine.
package config

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cosray/internal/diffusion"
	"github.com/san-kum/cosray/internal/field"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

const (
	DefaultCandidates = 100
	DefaultSteps      = 100
	DefaultSeed       = 42
	DefaultStrength   = 1.0 // nG
	DefaultEnergy     = 1.0 // EeV
	DefaultGamma      = 5.0 / 3.0
	DefaultWaves      = 64
)

type Config struct {
	Field  FieldConfig  `yaml:"field"`
	Engine EngineConfig `yaml:"engine"`
	Source SourceConfig `yaml:"source"`
	Run    RunConfig    `yaml:"run"`
}

type FieldConfig struct {
	Model    string  `yaml:"model"`    // uniform | turbulent
	Strength float64 `yaml:"strength"` // mean field along z (nG)
	TurbRMS  float64 `yaml:"turb_rms"` // turbulent RMS strength (nG)
	LMin     float64 `yaml:"l_min"`    // inner turbulence scale (pc)
	LMax     float64 `yaml:"l_max"`    // outer turbulence scale (pc)
	Gamma    float64 `yaml:"gamma"`    // turbulence spectral index
	Waves    int     `yaml:"waves"`    // number of plane-wave modes
}

type EngineConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	MinStep   float64 `yaml:"min_step"` // pc
	MaxStep   float64 `yaml:"max_step"` // pc
	Epsilon   float64 `yaml:"epsilon"`
	Alpha     float64 `yaml:"alpha"`
	Scale     float64 `yaml:"scale"`
}

type SourceConfig struct {
	Charge int     `yaml:"charge"`
	Mass   int     `yaml:"mass"`
	Energy float64 `yaml:"energy"` // EeV
}

type RunConfig struct {
	Candidates int    `yaml:"candidates"`
	Steps      int    `yaml:"steps"`
	Seed       int64  `yaml:"seed"`
	LossTable  string `yaml:"loss_table"` // optional pair-production table
}

func DefaultConfig() *Config {
	return &Config{
		Field: FieldConfig{
			Model:    "uniform",
			Strength: DefaultStrength,
			TurbRMS:  DefaultStrength,
			LMin:     1,
			LMax:     100,
			Gamma:    DefaultGamma,
			Waves:    DefaultWaves,
		},
		Engine: EngineConfig{
			Tolerance: diffusion.DefaultTolerance,
			MinStep:   diffusion.DefaultMinStep / unit.Parsec,
			MaxStep:   diffusion.DefaultMaxStep / unit.Parsec,
			Epsilon:   diffusion.DefaultEpsilon,
			Alpha:     diffusion.DefaultAlpha,
			Scale:     diffusion.DefaultScale,
		},
		Source: SourceConfig{
			Charge: 1,
			Mass:   1,
			Energy: DefaultEnergy,
		},
		Run: RunConfig{
			Candidates: DefaultCandidates,
			Steps:      DefaultSteps,
			Seed:       DefaultSeed,
		},
	}
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
	if err := cfg.Validate(); err != nil {
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
	switch c.Field.Model {
	case "uniform", "turbulent":
	default:
		return fmt.Errorf("config: unknown field model %q", c.Field.Model)
	}
	if c.Run.Candidates < 1 {
		return fmt.Errorf("config: candidates must be at least 1, got %d", c.Run.Candidates)
	}
	if c.Run.Steps < 1 {
		return fmt.Errorf("config: steps must be at least 1, got %d", c.Run.Steps)
	}
	if c.Source.Energy <= 0 {
		return fmt.Errorf("config: source energy must be positive, got %g", c.Source.Energy)
	}
	if c.Source.Mass < 0 || c.Source.Charge < 0 {
		return fmt.Errorf("config: charge/mass numbers must be non-negative")
	}
	return nil
}

// BuildField constructs the configured field model. Turbulent realizations
// draw their modes from rng so the whole run stays seed-reproducible.
func (c *Config) BuildField(rng *rand.Rand) (field.Sampler, error) {
	mean := vec.Vec3{Z: c.Field.Strength * unit.NanoGauss}
	switch c.Field.Model {
	case "uniform":
		return field.NewUniform(mean), nil
	case "turbulent":
		return field.NewTurbulent(
			mean,
			c.Field.TurbRMS*unit.NanoGauss,
			c.Field.LMin*unit.Parsec,
			c.Field.LMax*unit.Parsec,
			c.Field.Gamma,
			c.Field.Waves,
			rng,
		)
	default:
		return nil, fmt.Errorf("config: unknown field model %q", c.Field.Model)
	}
}

// BuildEngine constructs the transport module with the configured
// parameters; every setter re-validates the engine invariants.
func (c *Config) BuildEngine(f field.Sampler) (*diffusion.SDE, error) {
	s, err := diffusion.New(f)
	if err != nil {
		return nil, err
	}
	// lower the floor before the ceiling so intermediate states stay valid
	minStep := c.Engine.MinStep * unit.Parsec
	maxStep := c.Engine.MaxStep * unit.Parsec
	setSteps := func() error {
		if minStep < s.MinimumStep() {
			if err := s.SetMinimumStep(minStep); err != nil {
				return err
			}
			return s.SetMaximumStep(maxStep)
		}
		if err := s.SetMaximumStep(maxStep); err != nil {
			return err
		}
		return s.SetMinimumStep(minStep)
	}
	for _, err := range []error{
		setSteps(),
		s.SetTolerance(c.Engine.Tolerance),
		s.SetEpsilon(c.Engine.Epsilon),
		s.SetAlpha(c.Engine.Alpha),
		s.SetScale(c.Engine.Scale),
	} {
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}
