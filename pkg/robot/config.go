package robot

import (
	"encoding/json"
	"os"
)

const DefaultConfigFile = "squarebot.json"

// Config holds the hardware configuration
type Config struct {
	Port        string      `json:"port"`
	Wheels      PairConfig  `json:"wheels"`
	Attachments PairConfig  `json:"attachments"`
	Specs       Specs       `json:"specs"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// PairConfig holds the servos of a left/right pair
type PairConfig struct {
	Left  ServoConfig `json:"left"`
	Right ServoConfig `json:"right"`
}

// ServoConfig identifies one servo on the bus. ID 0 means not configured.
type ServoConfig struct {
	ID       int  `json:"id,omitempty"`
	Inverted bool `json:"inverted,omitempty"`
}

// Configured returns true if the servo has an ID
func (s ServoConfig) Configured() bool {
	return s.ID > 0
}

// Side returns the servo config for a side
func (p PairConfig) Side(side Side) ServoConfig {
	if side == Left {
		return p.Left
	}
	return p.Right
}

// DefaultConfig returns a configuration with default specs and no hardware
func DefaultConfig() *Config {
	return &Config{Specs: DefaultSpecs()}
}

// IsConfigured returns true if both wheels are assigned to servos
func (c *Config) IsConfigured() bool {
	return c.Port != "" && c.Wheels.Left.Configured() && c.Wheels.Right.Configured()
}

// IsCalibrated returns true if any sensor has calibration data
func (c *Config) IsCalibrated() bool {
	_, ok := c.Calibration.Threshold()
	return ok
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Specs.WheelDiameterMM <= 0 {
		cfg.Specs.WheelDiameterMM = DefaultWheelDiameterMM
	}
	if cfg.Specs.AxleTrackMM <= 0 {
		cfg.Specs.AxleTrackMM = DefaultAxleTrackMM
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
