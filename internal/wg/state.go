// Package wg reads and changes WireGuard interface state through the wg and
// wg-quick tools, or through the kernel's netlink API.
package wg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/egorlepa/mullctl/internal/platform"
)

// State is the live connection state. An empty Interface means disconnected.
type State struct {
	Interface string
}

// Connected reports whether an interface is up.
func (s State) Connected() bool { return s.Interface != "" }

func (s State) String() string {
	if !s.Connected() {
		return "disconnected"
	}
	return "connected(" + s.Interface + ")"
}

// Reader reports the currently active WireGuard interface.
type Reader interface {
	Current(ctx context.Context) (State, error)
}

// IntrospectionError means the state could not be read at all. It is never
// returned for a system that simply has no interface up.
type IntrospectionError struct {
	Err error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("read wireguard state: %v", e.Err)
}

func (e *IntrospectionError) Unwrap() error { return e.Err }

// CommandReader reads state from `wg show interfaces`.
type CommandReader struct {
	Runner platform.Runner
	Prefix string
	Logger *slog.Logger
}

func (r *CommandReader) Current(ctx context.Context) (State, error) {
	argv := []string{platform.WGBinary, "show", "interfaces"}
	res, err := r.Runner.Run(ctx, argv...)
	if err != nil {
		return State{}, &IntrospectionError{Err: err}
	}
	if err := res.Err(argv); err != nil {
		return State{}, &IntrospectionError{Err: err}
	}
	return choose(strings.Fields(res.Stdout), r.Prefix, r.Logger), nil
}

// choose picks the active interface. wg-quick allows several tunnels at once
// even though this tool only ever brings up one; prefer ours when that happens.
func choose(names []string, prefix string, logger *slog.Logger) State {
	switch len(names) {
	case 0:
		return State{}
	case 1:
		return State{Interface: names[0]}
	}
	picked := names[0]
	for _, n := range names {
		if prefix != "" && strings.HasPrefix(n, prefix) {
			picked = n
			break
		}
	}
	if logger != nil {
		logger.Warn("multiple wireguard interfaces up", "interfaces", strings.Join(names, ","), "using", picked)
	}
	return State{Interface: picked}
}
