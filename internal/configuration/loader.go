package configuration

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/liveforeverx/locker/internal/configuration/util"
	"gopkg.in/yaml.v3"
)

// Load reads application.yml from dir, then overlays the profile file
// (application-<profile>.yml) when the base names a profile. A .env file
// next to the process feeds the strict ${VAR} expansion of both files.
func Load(dir string) (*Properties, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := loadBaseConfig(dir)
	if err != nil {
		return nil, err
	}

	if cfg.App.Profile != "" {
		if err := loadProfileConfig(dir, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func loadBaseConfig(dir string) (*Properties, error) {
	raw, err := util.LoadAndExpandYaml(dir, "application")
	if err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}

	cfg := &Properties{}
	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, fmt.Errorf("parse base config: %w", err)
	}

	return cfg, nil
}

func loadProfileConfig(dir string, cfg *Properties) error {
	raw, err := util.LoadAndExpandYaml(dir, fmt.Sprintf("application-%s", cfg.App.Profile))
	if err != nil {
		return fmt.Errorf("load profile config: %w", err)
	}

	if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
		return fmt.Errorf("parse profile config: %w", err)
	}

	return nil
}

func applyDefaults(cfg *Properties) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Transport.Network == "" {
		cfg.Transport.Network = "tcp"
	}
	if cfg.Transport.TimeoutMS <= 0 {
		cfg.Transport.TimeoutMS = 1000
	}
	if cfg.Cluster.W < 1 {
		cfg.Cluster.W = 1
	}
	if cfg.Cluster.DefaultLeaseMS <= 0 {
		cfg.Cluster.DefaultLeaseMS = 2000
	}
	if cfg.Cluster.LockTTLMS <= 0 {
		cfg.Cluster.LockTTLMS = 1000
	}
	if cfg.Cluster.LockSweepMS <= 0 {
		cfg.Cluster.LockSweepMS = 1000
	}
	if cfg.Cluster.LeaseSweepMS <= 0 {
		cfg.Cluster.LeaseSweepMS = 10000
	}
}
