package config

import "sort"

// Presets are complete run configurations for common transport scenarios,
// keyed by name. Each returns a fresh copy so callers can tweak it.
var presets = map[string]func() *Config{
	// galactic: protons in Kolmogorov turbulence on a µG-scale mean field
	"galactic": func() *Config {
		cfg := DefaultConfig()
		cfg.Field.Model = "turbulent"
		cfg.Field.Strength = 1000 // 1 µG in nG
		cfg.Field.TurbRMS = 1000
		cfg.Field.LMin = 1
		cfg.Field.LMax = 150
		return cfg
	},
	// isotropic: equal diffusion along and across the field, flat spectrum
	"isotropic": func() *Config {
		cfg := DefaultConfig()
		cfg.Engine.Epsilon = 1
		cfg.Engine.Alpha = 0
		return cfg
	},
	// fieldline: no cross-field diffusion, candidates trace field lines
	"fieldline": func() *Config {
		cfg := DefaultConfig()
		cfg.Engine.Epsilon = 0
		return cfg
	},
	// extragalactic: heavy nuclei on Mpc steps with pair-production scales
	"extragalactic": func() *Config {
		cfg := DefaultConfig()
		cfg.Source.Charge = 26
		cfg.Source.Mass = 56
		cfg.Source.Energy = 10
		cfg.Engine.MinStep = 1e4
		cfg.Engine.MaxStep = 1e6
		return cfg
	},
}

func GetPreset(name string) *Config {
	mk, ok := presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
