// Package servers persists the cached server list and the default server as
// plain text files in the config directory.
package servers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/egorlepa/mullctl/internal/platform"
	"github.com/egorlepa/mullctl/internal/wg"
)

// ErrNoServers is returned by Random when nothing matches.
var ErrNoServers = errors.New("no servers available")

// Store manages the server list cache and default server file.
type Store struct {
	mu          sync.Mutex
	listPath    string
	defaultPath string

	// Pick returns a uniform index in [0, n). Replaceable in tests.
	Pick func(n int) int
}

// NewStore creates a Store that reads/writes files in dir.
func NewStore(dir string) *Store {
	return &Store{
		listPath:    filepath.Join(dir, platform.ServerListFile),
		defaultPath: filepath.Join(dir, platform.DefaultServerFile),
		Pick:        rand.Intn,
	}
}

// List returns the cached server names. A missing cache is an empty list.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList()
}

// SaveList replaces the cached server names.
func (s *Store) SaveList(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveList(names)
}

// Refresh regenerates the cache from the *.conf files in the WireGuard
// config directory, listed through runner.
func (s *Store) Refresh(ctx context.Context, runner platform.Runner, wgDir string) ([]string, error) {
	names, err := wg.ListConfigs(ctx, runner, wgDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", wgDir, err)
	}
	if err := s.SaveList(names); err != nil {
		return nil, err
	}
	return names, nil
}

// Random picks uniformly from the cached names. A non-empty region keeps
// only names whose part after prefix equals region or starts with "region-",
// so "se" matches "mullvad-se-sto" and "se-sto" matches it exactly.
func (s *Store) Random(region, prefix string) (string, error) {
	names, err := s.List()
	if err != nil {
		return "", err
	}
	names = Filter(names, region, prefix)
	if len(names) == 0 {
		if region != "" {
			return "", fmt.Errorf("%w in region %q", ErrNoServers, region)
		}
		return "", ErrNoServers
	}
	return names[s.Pick(len(names))], nil
}

// Filter returns the names matching region. See Random.
func Filter(names []string, region, prefix string) []string {
	if region == "" {
		return names
	}
	region = strings.ToLower(region)
	var out []string
	for _, n := range names {
		bare := strings.TrimPrefix(n, prefix)
		if bare == region || strings.HasPrefix(bare, region+"-") {
			out = append(out, n)
		}
	}
	return out
}

// Default returns the stored default server, or "" if none is set.
func (s *Store) Default() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.defaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read default server: %w: %w", platform.ErrPersistence, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetDefault stores name as the default server.
func (s *Store) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.defaultPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w: %w", platform.ErrPersistence, err)
	}
	if err := os.WriteFile(s.defaultPath, []byte(name+"\n"), 0644); err != nil {
		return fmt.Errorf("write default server: %w: %w", platform.ErrPersistence, err)
	}
	return nil
}

func (s *Store) loadList() ([]string, error) {
	data, err := os.ReadFile(s.listPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read server list: %w: %w", platform.ErrPersistence, err)
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (s *Store) saveList(names []string) error {
	if err := os.MkdirAll(filepath.Dir(s.listPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w: %w", platform.ErrPersistence, err)
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.listPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write server list: %w: %w", platform.ErrPersistence, err)
	}
	return nil
}
