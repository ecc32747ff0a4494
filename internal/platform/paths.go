package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Base directories.
	DefaultConfigDir = "~/.config/mullvad"
	WireguardDir     = "/etc/wireguard"

	// Files under the config dir.
	ConfigFileName    = "config.yaml"
	DefaultServerFile = "default.txt"
	ServerListFile    = "server_list.txt"
	ErrorLogFile      = "error.log"
	LockFileName      = "mullctl.lock"

	// External tools.
	ElevationCommand = "doas"
	WGBinary         = "wg"
	WGQuickBinary    = "wg-quick"

	// Naming and verification.
	InterfacePrefix = "mullvad-"
	VerifyEndpoint  = "https://am.i.mullvad.net/json"
)

// ErrPersistence wraps every failure to read or write a file under the config
// dir: the config itself, the error log, the lock and the server files.
var ErrPersistence = errors.New("persistence failure")

// DefaultConfigFile returns the config file path used when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(ExpandHome(DefaultConfigDir), ConfigFileName)
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
