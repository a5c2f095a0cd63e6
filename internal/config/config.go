// Package config loads, validates, and persists the spots-and-stripes
// experiment configuration. Configuration lives in a YAML file; a handful
// of environment variables override it for scripting convenience.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all spots-and-stripes configuration.
type Config struct {
	// Experiment parameters (rule, population, probabilities).
	Experiment ExperimentConfig `yaml:"experiment"`

	// Output artifacts and run database.
	Output OutputConfig `yaml:"output"`

	// Category file logging.
	Logging LoggingConfig `yaml:"logging"`
}

// ExperimentConfig holds the evolution parameters. Defaults reproduce the
// published spots-and-stripes runs.
type ExperimentConfig struct {
	// Rule is the CA rule in Golly notation, e.g. "B3/S45678" or
	// "Immigration". An optional ":T60,60" suffix overrides AdultSize.
	Rule string `yaml:"rule"`

	// TargetNumber selects the target pattern (1-5).
	TargetNumber int `yaml:"target_number"`

	PopulationSize int `yaml:"population_size"` // static population; one death per birth
	SampleSize     int `yaml:"sample_size"`     // tournament size; 0 disables selection
	MaxBirths      int `yaml:"max_births"`      // run ends after this many births
	NumSteps       int `yaml:"num_steps"`       // generations from seed to adult

	ProbBlack     float64 `yaml:"prob_black"`     // seeding coin for the first ink
	ProbWhite     float64 `yaml:"prob_white"`     // seeding coin for the second ink
	ProbMutation  float64 `yaml:"prob_mutation"`  // per-cell mutation probability
	ProbSelection float64 `yaml:"prob_selection"` // probability a birth uses tournament selection

	SeedSize  int `yaml:"seed_size"`  // square seed edge length
	AdultSize int `yaml:"adult_size"` // square universe edge length

	// Workers bounds the goroutines used while building generation zero.
	// Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// RandomSeed seeds the run's RNG; zero picks a time-based seed.
	RandomSeed int64 `yaml:"random_seed"`

	// CheckpointEvery controls how often progress rows are written to the
	// run database, in births.
	CheckpointEvery int `yaml:"checkpoint_every"`
}

// OutputConfig configures run artifacts.
type OutputConfig struct {
	// Dir receives the RLE photos and the plain-text run log.
	Dir string `yaml:"dir"`

	// DatabasePath is the SQLite run database.
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the configuration of the published
// spots-and-stripes experiment: Coral rule, target 1, population 1000.
func DefaultConfig() *Config {
	return &Config{
		Experiment: ExperimentConfig{
			Rule:            "B3/S45678:T60,60",
			TargetNumber:    1,
			PopulationSize:  1000,
			SampleSize:      40,
			MaxBirths:       1000000,
			NumSteps:        100,
			ProbBlack:       0.5,
			ProbWhite:       0.5,
			ProbMutation:    0.1,
			ProbSelection:   0.6,
			SeedSize:        30,
			AdultSize:       60,
			Workers:         runtime.GOMAXPROCS(0),
			CheckpointEvery: 1000,
		},
		Output: OutputConfig{
			Dir:          "results",
			DatabasePath: filepath.Join("results", "runs.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads a config file, applies environment overrides, and validates.
// A missing file yields the defaults (still env-overridden and validated).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets scripts tweak single knobs without editing the
// config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SPOTS_RULE"); v != "" {
		c.Experiment.Rule = v
	}
	if v := os.Getenv("SPOTS_TARGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Experiment.TargetNumber = n
		}
	}
	if v := os.Getenv("SPOTS_DB"); v != "" {
		c.Output.DatabasePath = v
	}
	if v := os.Getenv("SPOTS_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Experiment.RandomSeed = n
		}
	}
}

// Validate checks ranges and cross-field constraints.
func (c *Config) Validate() error {
	e := &c.Experiment
	if e.Rule == "" {
		return fmt.Errorf("experiment.rule is required")
	}
	if e.TargetNumber < 1 || e.TargetNumber > 5 {
		return fmt.Errorf("experiment.target_number must be 1-5, got %d", e.TargetNumber)
	}
	if e.PopulationSize < 2 {
		return fmt.Errorf("experiment.population_size must be >= 2, got %d", e.PopulationSize)
	}
	if e.SampleSize < 0 || e.SampleSize > e.PopulationSize {
		return fmt.Errorf("experiment.sample_size must be in [0, population_size], got %d", e.SampleSize)
	}
	if e.MaxBirths < 0 {
		return fmt.Errorf("experiment.max_births must be >= 0, got %d", e.MaxBirths)
	}
	if e.NumSteps < 0 {
		return fmt.Errorf("experiment.num_steps must be >= 0, got %d", e.NumSteps)
	}
	for name, p := range map[string]float64{
		"prob_black":     e.ProbBlack,
		"prob_white":     e.ProbWhite,
		"prob_mutation":  e.ProbMutation,
		"prob_selection": e.ProbSelection,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("experiment.%s must be in [0,1], got %v", name, p)
		}
	}
	if e.SeedSize < 1 {
		return fmt.Errorf("experiment.seed_size must be >= 1, got %d", e.SeedSize)
	}
	if e.AdultSize < e.SeedSize {
		return fmt.Errorf("experiment.adult_size (%d) must be >= seed_size (%d)",
			e.AdultSize, e.SeedSize)
	}
	if e.Workers < 0 {
		return fmt.Errorf("experiment.workers must be >= 0, got %d", e.Workers)
	}
	if e.CheckpointEvery < 1 {
		return fmt.Errorf("experiment.checkpoint_every must be >= 1, got %d", e.CheckpointEvery)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}
