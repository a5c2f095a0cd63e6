package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Experiment.Rule != "B3/S45678:T60,60" {
		t.Errorf("expected Coral torus rule, got %s", cfg.Experiment.Rule)
	}
	if cfg.Experiment.PopulationSize != 1000 {
		t.Errorf("expected PopulationSize=1000, got %d", cfg.Experiment.PopulationSize)
	}
	if cfg.Experiment.SeedSize != 30 || cfg.Experiment.AdultSize != 60 {
		t.Errorf("expected 30x30 seed in a 60x60 universe, got %d/%d",
			cfg.Experiment.SeedSize, cfg.Experiment.AdultSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("SPOTS_RULE", "")
	t.Setenv("SPOTS_TARGET", "")
	t.Setenv("SPOTS_DB", "")
	t.Setenv("SPOTS_SEED", "")

	path := filepath.Join(t.TempDir(), "spots.yaml")

	cfg := DefaultConfig()
	cfg.Experiment.Rule = "Immigration:T60,60"
	cfg.Experiment.TargetNumber = 3
	cfg.Experiment.PopulationSize = 2000

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Experiment.Rule != "Immigration:T60,60" {
		t.Errorf("expected Immigration rule, got %s", loaded.Experiment.Rule)
	}
	if loaded.Experiment.TargetNumber != 3 {
		t.Errorf("expected target 3, got %d", loaded.Experiment.TargetNumber)
	}
	if loaded.Experiment.PopulationSize != 2000 {
		t.Errorf("expected population 2000, got %d", loaded.Experiment.PopulationSize)
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SPOTS_RULE", "")
	t.Setenv("SPOTS_TARGET", "")
	t.Setenv("SPOTS_DB", "")
	t.Setenv("SPOTS_SEED", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Experiment.TargetNumber != 1 {
		t.Errorf("expected default target 1, got %d", cfg.Experiment.TargetNumber)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SPOTS_RULE", "B36/S23")
	t.Setenv("SPOTS_TARGET", "5")
	t.Setenv("SPOTS_DB", "/tmp/override.db")
	t.Setenv("SPOTS_SEED", "42")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Experiment.Rule != "B36/S23" {
		t.Errorf("expected rule override, got %s", cfg.Experiment.Rule)
	}
	if cfg.Experiment.TargetNumber != 5 {
		t.Errorf("expected target override, got %d", cfg.Experiment.TargetNumber)
	}
	if cfg.Output.DatabasePath != "/tmp/override.db" {
		t.Errorf("expected db override, got %s", cfg.Output.DatabasePath)
	}
	if cfg.Experiment.RandomSeed != 42 {
		t.Errorf("expected seed override, got %d", cfg.Experiment.RandomSeed)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad target", func(c *Config) { c.Experiment.TargetNumber = 9 }},
		{"tiny population", func(c *Config) { c.Experiment.PopulationSize = 1 }},
		{"sample exceeds population", func(c *Config) {
			c.Experiment.PopulationSize = 10
			c.Experiment.SampleSize = 11
		}},
		{"negative births", func(c *Config) { c.Experiment.MaxBirths = -1 }},
		{"bad probability", func(c *Config) { c.Experiment.ProbMutation = 1.5 }},
		{"seed larger than adult", func(c *Config) {
			c.Experiment.SeedSize = 80
			c.Experiment.AdultSize = 60
		}},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"empty rule", func(c *Config) { c.Experiment.Rule = "" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
