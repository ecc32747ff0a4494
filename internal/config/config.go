package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/egorlepa/mullctl/internal/platform"
)

// Load reads the config from path. If the file doesn't exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w: %w", platform.ErrPersistence, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w: %w", platform.ErrPersistence, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w: %w", platform.ErrPersistence, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.WireGuard.StateSource {
	case "", "command", "netlink":
	default:
		return fmt.Errorf("config: unknown wireguard.state_source %q", c.WireGuard.StateSource)
	}
	if c.ConfigDir == "" {
		return fmt.Errorf("config: config_dir must not be empty")
	}
	return nil
}
