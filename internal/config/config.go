// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fieldsim/internal/field"
)

// Point is a position in field coordinates.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// FieldInfo names the simulated field and its extent.
type FieldInfo struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// NodeSpec places one sensor node.
type NodeSpec struct {
	ID   int     `yaml:"id"`
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Energy holds the node parameters shared by all nodes of a simulation.
type Energy struct {
	Battery           float64 `yaml:"battery"`
	SensingRange      float64 `yaml:"sensing_range"`
	CommRange         float64 `yaml:"comm_range"`
	EnergyPerSense    float64 `yaml:"energy_per_sense"`
	EnergyPerTransmit float64 `yaml:"energy_per_transmit"`
}

// Animation configures the continuous loop variant. BaseStation may be
// nil, in which case the top-level base station position is used.
type Animation struct {
	RefreshIntervalMS int        `yaml:"refresh_interval_ms"`
	CommRange         float64    `yaml:"comm_range"`
	PacketSpeed       float64    `yaml:"packet_speed"`
	FrameRate         int        `yaml:"frame_rate"`
	BaseStation       *Point     `yaml:"base_station"`
	Nodes             []NodeSpec `yaml:"nodes"`
}

// RefreshInterval returns the reading refresh interval as a duration.
func (a Animation) RefreshInterval() time.Duration {
	return time.Duration(a.RefreshIntervalMS) * time.Millisecond
}

// SimulationConfig is the root configuration for the field, the base
// station, and both scheduler variants.
type SimulationConfig struct {
	Field       FieldInfo  `yaml:"field"`
	BaseStation Point      `yaml:"base_station"`
	Defaults    Energy     `yaml:"defaults"`
	Nodes       []NodeSpec `yaml:"nodes"`
	MaxCycles   int        `yaml:"max_cycles"`
	Animation   Animation  `yaml:"animation"`
}

// Load loads YAML config, validates it against a CUE schema, and fills
// in defaults for unset energy parameters.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.Defaults.Battery <= 0 {
		c.Defaults.Battery = field.DefaultBattery
	}
	if c.Defaults.SensingRange <= 0 {
		c.Defaults.SensingRange = field.DefaultSensingRange
	}
	if c.Defaults.CommRange <= 0 {
		c.Defaults.CommRange = field.DefaultCommRange
	}
	if c.Defaults.EnergyPerSense <= 0 {
		c.Defaults.EnergyPerSense = field.DefaultEnergyPerSense
	}
	if c.Defaults.EnergyPerTransmit <= 0 {
		c.Defaults.EnergyPerTransmit = field.DefaultEnergyPerTransmit
	}
	if c.MaxCycles <= 0 {
		c.MaxCycles = 5
	}
	if c.Animation.RefreshIntervalMS <= 0 {
		c.Animation.RefreshIntervalMS = 3000
	}
	if c.Animation.CommRange <= 0 {
		c.Animation.CommRange = 300
	}
	if c.Animation.PacketSpeed <= 0 {
		c.Animation.PacketSpeed = 100
	}
	if c.Animation.FrameRate <= 0 {
		c.Animation.FrameRate = 30
	}
}

// Validate checks the semantic constraints CUE cannot express.
func (c *SimulationConfig) Validate() error {
	if len(c.Nodes) == 0 && len(c.Animation.Nodes) == 0 {
		return fmt.Errorf("no nodes defined in the configuration")
	}
	if err := validateNodes(c.Nodes); err != nil {
		return fmt.Errorf("nodes: %w", err)
	}
	if err := validateNodes(c.Animation.Nodes); err != nil {
		return fmt.Errorf("animation nodes: %w", err)
	}
	return nil
}

func validateNodes(nodes []NodeSpec) error {
	seen := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if !field.DataType(n.Type).Valid() {
			return fmt.Errorf("node %d: unknown data type %q", n.ID, n.Type)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}
