package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/thermo/internal/md"
	"github.com/san-kum/thermo/internal/thermo"
)

const (
	DefaultEvery = 50
	DefaultSteps = 250
)

var ErrInvalid = errors.New("config: invalid run file")

// Config is a run file: one system driven through a sequence of stages.
type Config struct {
	System     md.Params          `yaml:"system"`
	Thermostat *Thermostat        `yaml:"thermostat,omitempty"`
	Variables  map[string]float64 `yaml:"variables,omitempty"`
	Every      int64              `yaml:"every"`
	Keywords   []string           `yaml:"keywords"`
	Modify     thermo.Modify      `yaml:"modify,omitempty"`
	Stages     []Stage            `yaml:"stages"`
}

type Thermostat struct {
	Target float64 `yaml:"target"`
	Tau    float64 `yaml:"tau"`
}

// Stage is one run. Keywords and Modify, when set, are applied before the
// stage starts; otherwise the previous stage's output carries over.
type Stage struct {
	Name     string        `yaml:"name,omitempty"`
	Steps    int64         `yaml:"steps"`
	Every    int64         `yaml:"every,omitempty"`
	Keywords []string      `yaml:"keywords,omitempty"`
	Modify   thermo.Modify `yaml:"modify,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		System:   md.DefaultParams(),
		Every:    DefaultEvery,
		Keywords: []string{"one"},
		Stages:   []Stage{{Name: "run", Steps: DefaultSteps}},
	}
}

// StageEvery returns the reporting interval of stage i.
func (c *Config) StageEvery(i int) int64 {
	if e := c.Stages[i].Every; e > 0 {
		return e
	}
	return c.Every
}

// TotalSteps is the number of steps across all stages.
func (c *Config) TotalSteps() int64 {
	var n int64
	for _, s := range c.Stages {
		n += s.Steps
	}
	return n
}

func (c *Config) Validate() error {
	if err := c.System.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Every < 0 {
		return fmt.Errorf("%w: every must not be negative", ErrInvalid)
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("%w: no thermo keywords", ErrInvalid)
	}
	if len(c.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalid)
	}
	for i, s := range c.Stages {
		if s.Steps < 0 || s.Every < 0 {
			return fmt.Errorf("%w: stage %d: steps and every must not be negative", ErrInvalid, i+1)
		}
	}
	if t := c.Thermostat; t != nil && (t.Target <= 0 || t.Tau <= 0) {
		return fmt.Errorf("%w: thermostat target and tau must be positive", ErrInvalid)
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
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
