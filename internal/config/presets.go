package config

import "sort"

// Presets builds a fresh config per call so callers may edit the result.
var Presets = map[string]func() *Config{
	"lj-melt": func() *Config {
		cfg := DefaultConfig()
		cfg.Keywords = []string{"step", "temp", "epair", "emol", "etotal", "press"}
		cfg.Stages = []Stage{{Name: "melt", Steps: 250}}
		return cfg
	},
	"gas-leak": func() *Config {
		cfg := DefaultConfig()
		cfg.System.Boundary = "fff"
		cfg.System.Temperature = 3.0
		cfg.System.Density = 0.3
		cfg.Every = 20
		cfg.Keywords = []string{"step", "atoms", "temp", "pe", "ke", "press"}
		cfg.Modify.LostPolicy = "warn"
		cfg.Modify.Normalize = "yes"
		cfg.Stages = []Stage{{Name: "leak", Steps: 400}}
		return cfg
	},
	"nvt": func() *Config {
		cfg := DefaultConfig()
		cfg.Thermostat = &Thermostat{Target: 1.0, Tau: 0.5}
		cfg.Keywords = []string{"step", "temp", "pe", "etotal", "f_berendsen", "ecouple", "econserve"}
		cfg.Stages = []Stage{
			{Name: "equilibrate", Steps: 200},
			{Name: "production", Steps: 300, Every: 100, Keywords: []string{"multi"}},
		}
		return cfg
	},
	"diffusion": func() *Config {
		cfg := DefaultConfig()
		cfg.System.Temperature = 2.0
		cfg.Keywords = []string{"step", "temp", "c_msd[4]", "c_com[1]", "c_com[2]", "c_com[3]"}
		cfg.Modify.Line = "yaml"
		cfg.Stages = []Stage{{Name: "diffuse", Steps: 500}}
		return cfg
	},
}

// GetPreset returns nil for an unknown name.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
