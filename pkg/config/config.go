// Package config provides configuration loading and management for dwisim.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"dwisim/internal/models"
	"dwisim/pkg/simulation"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Sticks & Ball simulation parameters
	Simulation struct {
		// Diffusivity is the diffusion coefficient in mm^2/s
		Diffusivity float64 `yaml:"diffusivity"`

		// S0 is the unweighted signal
		S0 float64 `yaml:"s0"`

		// SNR sets the noise level; null disables noise
		SNR *float64 `yaml:"snr"`

		// Seed makes the noise reproducible; 0 seeds from the clock
		Seed uint64 `yaml:"seed"`

		// Angles lists (polar, azimuth) pairs in degrees, one per stick
		Angles [][2]float64 `yaml:"angles"`

		// Fractions lists the stick volume fractions in percent
		Fractions []float64 `yaml:"fractions"`
	} `yaml:"simulation"`

	// Gradient sampling scheme
	Scheme struct {
		BValues    []float64    `yaml:"bValues"`
		Directions [][3]float64 `yaml:"directions"`
	} `yaml:"scheme"`

	// Intensity bound estimation parameters
	Intensity struct {
		// Rate is the relative bin frequency a bin must exceed to count
		Rate float64 `yaml:"rate"`

		// OutLow and OutHigh are the display range for rescaled slices
		OutLow  float64 `yaml:"outLow"`
		OutHigh float64 `yaml:"outHigh"`
	} `yaml:"intensity"`

	// Output parameters
	Output struct {
		// Dir is where rendered slices are written
		Dir string `yaml:"dir"`

		// LogLevel is one of trace, debug, info, warn, error
		LogLevel string `yaml:"logLevel"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Two sticks crossing at right angles with 30% free water
	p := simulation.DefaultParams()
	cfg.Simulation.Diffusivity = p.Diffusivity
	cfg.Simulation.S0 = p.S0
	cfg.Simulation.SNR = p.SNR
	for _, s := range p.Sticks {
		cfg.Simulation.Angles = append(cfg.Simulation.Angles, [2]float64{s.Polar, s.Azimuth})
		cfg.Simulation.Fractions = append(cfg.Simulation.Fractions, s.Fraction)
	}

	// One b=0 volume and six non-collinear directions at b=1000
	cfg.Scheme.BValues = []float64{0, 1000, 1000, 1000, 1000, 1000, 1000}
	cfg.Scheme.Directions = [][3]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.7071067811865476, 0.7071067811865476, 0},
		{0, 0.7071067811865476, 0.7071067811865476},
		{0.7071067811865476, 0, 0.7071067811865476},
	}

	cfg.Intensity.Rate = 0.1
	cfg.Intensity.OutLow = 0
	cfg.Intensity.OutHigh = 255

	cfg.Output.Dir = "output"
	cfg.Output.LogLevel = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Lists replace rather than merge with the defaults
	cfg.Simulation.Angles = nil
	cfg.Simulation.Fractions = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if cfg.Simulation.Angles == nil && cfg.Simulation.Fractions == nil {
		def := DefaultConfig()
		cfg.Simulation.Angles = def.Simulation.Angles
		cfg.Simulation.Fractions = def.Simulation.Fractions
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the structural consistency of the configuration. Model
// level checks (fraction sums, SNR) are left to the simulator.
func (c *Config) Validate() error {
	if _, err := models.NewSticks(c.Simulation.Angles, c.Simulation.Fractions); err != nil {
		return err
	}
	return c.GradientTable().Validate()
}

// GradientTable builds the sampling scheme from the configuration
func (c *Config) GradientTable() models.GradientTable {
	dirs := make([]r3.Vec, len(c.Scheme.Directions))
	for i, d := range c.Scheme.Directions {
		dirs[i] = r3.Vec{X: d[0], Y: d[1], Z: d[2]}
	}
	bvals := make([]float64, len(c.Scheme.BValues))
	copy(bvals, c.Scheme.BValues)
	return models.GradientTable{BValues: bvals, Directions: dirs}
}

// SimulationParams builds simulator parameters from the configuration
func (c *Config) SimulationParams() (simulation.Params, error) {
	sticks, err := models.NewSticks(c.Simulation.Angles, c.Simulation.Fractions)
	if err != nil {
		return simulation.Params{}, err
	}

	p := simulation.Params{
		Diffusivity: c.Simulation.Diffusivity,
		S0:          c.Simulation.S0,
		Sticks:      sticks,
	}
	if c.Simulation.SNR != nil {
		p.SNR = simulation.SNRValue(*c.Simulation.SNR)
	}
	if c.Simulation.Seed != 0 {
		p.Src = rand.NewSource(c.Simulation.Seed)
	}
	return p, nil
}
