package config

import (
	"path/filepath"
	"time"

	"github.com/egorlepa/mullctl/internal/platform"
)

// Config is the top-level application configuration.
type Config struct {
	Version         int    `yaml:"version"`
	ConfigDir       string `yaml:"config_dir"`
	InterfacePrefix string `yaml:"interface_prefix"`
	LogLevel        string `yaml:"log_level"`

	WireGuard WireGuardConfig `yaml:"wireguard"`
	Elevation ElevationConfig `yaml:"elevation"`
	Verify    VerifyConfig    `yaml:"verify"`
	Timeouts  TimeoutsConfig  `yaml:"timeouts"`
}

// WireGuardConfig holds settings for the wrapped WireGuard tools.
type WireGuardConfig struct {
	Dir         string `yaml:"dir"`
	StateSource string `yaml:"state_source"` // "command" or "netlink"
	ElevateShow bool   `yaml:"elevate_show"`
}

// ElevationConfig names the privilege-escalation helper.
type ElevationConfig struct {
	Command string `yaml:"command"`
}

// VerifyConfig holds exit-node verification settings.
type VerifyConfig struct {
	Endpoint string `yaml:"endpoint"`
	Resolver string `yaml:"resolver"` // optional DNS server for the endpoint host
}

// TimeoutsConfig bounds external commands and the verification request.
type TimeoutsConfig struct {
	Command string `yaml:"command"`
	HTTP    string `yaml:"http"`
}

// CommandDuration parses the command timeout as a time.Duration.
func (t TimeoutsConfig) CommandDuration() time.Duration {
	return parseDuration(t.Command, 30*time.Second)
}

// HTTPDuration parses the HTTP timeout as a time.Duration.
func (t TimeoutsConfig) HTTPDuration() time.Duration {
	return parseDuration(t.HTTP, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Dir returns the config directory with "~" expanded.
func (c *Config) Dir() string {
	return platform.ExpandHome(c.ConfigDir)
}

// Path returns the path of a file inside the config directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.Dir(), name)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Version:         1,
		ConfigDir:       platform.DefaultConfigDir,
		InterfacePrefix: platform.InterfacePrefix,
		LogLevel:        "warn",
		WireGuard: WireGuardConfig{
			Dir:         platform.WireguardDir,
			StateSource: "command",
		},
		Elevation: ElevationConfig{
			Command: platform.ElevationCommand,
		},
		Verify: VerifyConfig{
			Endpoint: platform.VerifyEndpoint,
		},
		Timeouts: TimeoutsConfig{
			Command: "30s",
			HTTP:    "10s",
		},
	}
}
