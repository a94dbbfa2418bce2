// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Sense     SenseConfig     `yaml:"sense"`
	Ant       AntConfig       `yaml:"ant"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Memory    MemoryConfig    `yaml:"memory"`
	Player    PlayerConfig    `yaml:"player"`
	Maps      MapsConfig      `yaml:"maps"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SenseConfig holds forward-arc sensing geometry.
type SenseConfig struct {
	MaxDistance float64 `yaml:"max_distance"`
	MaxAngle    float64 `yaml:"max_angle"`
	RaysPerArc  int     `yaml:"rays_per_arc"`
}

// AntConfig holds per-ant movement/combat/think constants.
type AntConfig struct {
	Speed         float64 `yaml:"speed"`
	MaxTurnAngle  float64 `yaml:"max_turn_angle"`
	MaxLongevity  float64 `yaml:"max_longevity"`
	AttackDamage  float64 `yaml:"attack_damage"`
	ThinkInterval float64 `yaml:"think_interval"`
}

// SpawnConfig holds colony spawning cadence parameters.
type SpawnConfig struct {
	Interval          float64 `yaml:"interval"`
	FoodCost          int     `yaml:"food_cost"`
	InitialPopulation int     `yaml:"initial_population"`
}

// PheromoneConfig holds pheromone field parameters.
type PheromoneConfig struct {
	ChannelCount      int       `yaml:"channel_count"`
	MaxAmount         float64   `yaml:"max_amount"`
	DecayInterval     float64   `yaml:"decay_interval"`
	DefaultDecayRates []float64 `yaml:"default_decay_rates"`
}

// MemoryConfig holds per-ant scratch memory size.
type MemoryConfig struct {
	Size int `yaml:"size"`
}

// PlayerConfig holds player-host sandboxing and deadline parameters.
type PlayerConfig struct {
	UpdateDeadlineMs int     `yaml:"update_deadline_ms"`
	SetupDeadlineMs  int     `yaml:"setup_deadline_ms"`
	LogDir           string  `yaml:"log_dir"`
	SandboxCPUQuota  float64 `yaml:"sandbox_cpu_quota"`
}

// MapsConfig holds the default map search directory.
type MapsConfig struct {
	Directory string `yaml:"directory"`
}

// TelemetryConfig holds stats-window and CSV export parameters.
type TelemetryConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	OutputDir     string  `yaml:"output_dir"`
}

var current *Config

// Load reads the embedded defaults and merges an optional override file
// on top, then installs the result as the process-wide config.
func Load(overridePath string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("config: parse embedded defaults: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", overridePath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", overridePath, err)
		}
	}

	current = cfg
	return cfg, nil
}

// MustInit loads config and panics on failure. Intended for tests and
// command-line entry points where a bad override file is a bootstrap error.
func MustInit(overridePath string) *Config {
	cfg, err := Load(overridePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Cfg returns the current process-wide config, initializing defaults
// on first use.
func Cfg() *Config {
	if current == nil {
		return MustInit("")
	}
	return current
}
