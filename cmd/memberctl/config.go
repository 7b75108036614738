package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's runtime configuration. Values come from the YAML
// file when present, then environment overrides.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	StateDir      string        `yaml:"state_dir"`
	StorageDriver string        `yaml:"storage_driver"` // "file" or "sqlite"
	LogoutDelay   time.Duration `yaml:"logout_delay"`
}

func defaults() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		BaseURL:       "http://localhost:8080",
		StateDir:      filepath.Join(home, ".memberctl"),
		StorageDriver: "file",
		LogoutDelay:   1500 * time.Millisecond,
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		candidate := filepath.Join(cfg.StateDir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.StorageDriver != "file" && cfg.StorageDriver != "sqlite" {
		return nil, fmt.Errorf("unknown storage_driver %q (want file or sqlite)", cfg.StorageDriver)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MEMBERCTL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MEMBERCTL_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("MEMBERCTL_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = v
	}
	if v := os.Getenv("MEMBERCTL_LOGOUT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LogoutDelay = d
		}
	}
}
