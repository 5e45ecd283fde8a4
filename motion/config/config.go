// Package config loads machine configuration for the motion core:
// axis layout, per-axis rail limits, kinematics group membership, and
// the default velocity/acceleration/junction-deviation/arc-resolution
// parameters a toolhead is built with.
//
// Grounded on amken3d-gopper/standalone/config/config.go's
// LoadConfig/applyDefaults pattern (JSON decode plus a defaults pass),
// with an added YAML front-end decoding into the same MachineConfig,
// matching the pack's goeland86-snapmaker_moonraker config convention.
package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// AxisConfig describes one physical rail: its step/dir/enable pins
// (loaded and carried here; no package in this module reads them),
// travel range, and motion limits.
type AxisConfig struct {
	StepPin      string  `json:"step_pin" yaml:"step_pin"`
	DirPin       string  `json:"dir_pin" yaml:"dir_pin"`
	EnablePin    string  `json:"enable_pin,omitempty" yaml:"enable_pin,omitempty"`
	StepsPerMM   float64 `json:"steps_per_mm" yaml:"steps_per_mm"`
	MaxVelocity  float64 `json:"max_velocity" yaml:"max_velocity"`
	MaxAccel     float64 `json:"max_accel" yaml:"max_accel"`
	HomingVel    float64 `json:"homing_vel" yaml:"homing_vel"`
	MinPosition  float64 `json:"min_position" yaml:"min_position"`
	MaxPosition  float64 `json:"max_position" yaml:"max_position"`
	InvertDir    bool    `json:"invert_dir,omitempty" yaml:"invert_dir,omitempty"`
	InvertEnable bool    `json:"invert_enable,omitempty" yaml:"invert_enable,omitempty"`
}

// EndstopConfig describes one endstop's trigger pin.
type EndstopConfig struct {
	Pin    string `json:"pin" yaml:"pin"`
	Invert bool   `json:"invert,omitempty" yaml:"invert,omitempty"`
}

// GroupConfig describes one kinematics group: which axis letters it
// binds (e.g. "XYZ" or "AB"), and its first bound Move-coordinate
// slot (0 for the primary XYZ group).
type GroupConfig struct {
	Name      string `json:"name" yaml:"name"`
	AxisNames string `json:"axis_names" yaml:"axis_names"`
	AxisBase  int    `json:"axis_base" yaml:"axis_base"`
}

// MachineConfig is the complete motion-core configuration: axis
// layout plus the default planning parameters a toolhead is built
// with. Mirrors standalone.MachineConfig's shape, generalized from a
// fixed XYZE layout to configurable kinematics groups.
type MachineConfig struct {
	Kinematics string                   `json:"kinematics" yaml:"kinematics"`
	Axes       map[string]AxisConfig    `json:"axes" yaml:"axes"`
	Endstops   map[string]EndstopConfig `json:"endstops" yaml:"endstops"`
	Groups     []GroupConfig            `json:"groups" yaml:"groups"`

	DefaultVelocity      float64 `json:"default_velocity" yaml:"default_velocity"`
	DefaultAccel         float64 `json:"default_accel" yaml:"default_accel"`
	SquareCornerVelocity float64 `json:"square_corner_velocity" yaml:"square_corner_velocity"`
	ArcResolution        float64 `json:"arc_resolution" yaml:"arc_resolution"`
}

// Load parses a JSON configuration document and applies defaults,
// matching LoadConfig.
func Load(data []byte) (*MachineConfig, error) {
	var cfg MachineConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadYAML parses a YAML configuration document and applies defaults,
// decoding into the same MachineConfig shape as Load.
func LoadYAML(data []byte) (*MachineConfig, error) {
	var cfg MachineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills in missing configuration values with sensible
// defaults, matching applyDefaults's per-axis/per-heater pass.
func applyDefaults(cfg *MachineConfig) {
	if cfg.Kinematics == "" {
		cfg.Kinematics = "cartesian"
	}
	if cfg.DefaultVelocity == 0 {
		cfg.DefaultVelocity = 50.0
	}
	if cfg.DefaultAccel == 0 {
		cfg.DefaultAccel = 500.0
	}
	if cfg.SquareCornerVelocity == 0 {
		cfg.SquareCornerVelocity = 5.0
	}
	if cfg.ArcResolution == 0 {
		cfg.ArcResolution = 1.0
	}
	if len(cfg.Groups) == 0 {
		cfg.Groups = []GroupConfig{{Name: "xyz", AxisNames: "XYZ", AxisBase: 0}}
	}

	for name, axis := range cfg.Axes {
		if axis.MaxVelocity == 0 {
			axis.MaxVelocity = 300.0
		}
		if axis.MaxAccel == 0 {
			axis.MaxAccel = 1000.0
		}
		if axis.HomingVel == 0 {
			axis.HomingVel = 5.0
		}
		if axis.StepsPerMM == 0 {
			axis.StepsPerMM = 80.0
		}
		cfg.Axes[name] = axis
	}
}

// DefaultCartesianConfig returns a default configuration for a plain
// XYZE Cartesian machine, matching DefaultCartesianConfig.
func DefaultCartesianConfig() *MachineConfig {
	return &MachineConfig{
		Kinematics: "cartesian",
		Axes: map[string]AxisConfig{
			"x": {StepPin: "gpio0", DirPin: "gpio1", EnablePin: "gpio8", StepsPerMM: 80, MaxVelocity: 300, MaxAccel: 3000, HomingVel: 50, MinPosition: 0, MaxPosition: 220},
			"y": {StepPin: "gpio2", DirPin: "gpio3", EnablePin: "gpio8", StepsPerMM: 80, MaxVelocity: 300, MaxAccel: 3000, HomingVel: 50, MinPosition: 0, MaxPosition: 220},
			"z": {StepPin: "gpio4", DirPin: "gpio5", EnablePin: "gpio8", StepsPerMM: 400, MaxVelocity: 10, MaxAccel: 100, HomingVel: 5, MinPosition: 0, MaxPosition: 250},
			"e": {StepPin: "gpio6", DirPin: "gpio7", EnablePin: "gpio8", StepsPerMM: 96, MaxVelocity: 50, MaxAccel: 5000, HomingVel: 0, MinPosition: -10000, MaxPosition: 10000},
		},
		Endstops: map[string]EndstopConfig{
			"x": {Pin: "gpio20"},
			"y": {Pin: "gpio21"},
			"z": {Pin: "gpio22"},
		},
		Groups:               []GroupConfig{{Name: "xyz", AxisNames: "XYZ", AxisBase: 0}},
		DefaultVelocity:      50.0,
		DefaultAccel:         500.0,
		SquareCornerVelocity: 5.0,
		ArcResolution:        1.0,
	}
}
