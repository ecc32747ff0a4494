// Package platformtest provides test doubles for platform.Runner.
package platformtest

import (
	"context"
	"strings"
	"sync"

	"github.com/egorlepa/mullctl/internal/platform"
)

// Runner is a scripted platform.Runner that records every call.
type Runner struct {
	mu    sync.Mutex
	calls [][]string

	// Handler produces the outcome of a call. Nil means exit 0, no output.
	Handler func(argv []string) (platform.Result, error)
}

func (r *Runner) Run(_ context.Context, argv ...string) (platform.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), argv...))
	h := r.Handler
	r.mu.Unlock()
	if h == nil {
		return platform.Result{}, nil
	}
	return h(argv)
}

// Calls returns each recorded argv joined with spaces.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}

// System simulates a host with wg, wg-quick and an elevation helper.
// Only one interface is up at a time.
type System struct {
	mu sync.Mutex

	Active  string   // interface currently up
	Configs []string // file names listed in the wireguard dir

	FailShow bool // `wg show interfaces` exits 1
	FailUp   bool // `wg-quick up` exits 1 and leaves state unchanged
	FailDown bool // `wg-quick down` exits 1 and leaves state unchanged
	DropUp   bool // `wg-quick up` exits 0 but the interface never appears
}

// Runner returns a recording Runner backed by the simulated system.
func (s *System) Runner() *Runner {
	return &Runner{Handler: s.handle}
}

func (s *System) handle(argv []string) (platform.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(argv) > 0 && (argv[0] == "doas" || argv[0] == "sudo") {
		argv = argv[1:]
	}
	switch {
	case len(argv) == 3 && argv[0] == "wg" && argv[1] == "show" && argv[2] == "interfaces":
		if s.FailShow {
			return platform.Result{ExitCode: 1, Stderr: "Unable to access interface: Operation not permitted"}, nil
		}
		if s.Active == "" {
			return platform.Result{}, nil
		}
		return platform.Result{Stdout: s.Active + "\n"}, nil
	case len(argv) == 3 && argv[0] == "wg-quick" && argv[1] == "up":
		if s.FailUp {
			return platform.Result{ExitCode: 1, Stderr: "wg-quick: `" + argv[2] + "' does not exist"}, nil
		}
		if !s.DropUp {
			s.Active = argv[2]
		}
		return platform.Result{}, nil
	case len(argv) == 3 && argv[0] == "wg-quick" && argv[1] == "down":
		if s.FailDown || s.Active != argv[2] {
			return platform.Result{ExitCode: 1, Stderr: "wg-quick: `" + argv[2] + "' is not a WireGuard interface"}, nil
		}
		s.Active = ""
		return platform.Result{}, nil
	case len(argv) == 2 && argv[0] == "ls":
		return platform.Result{Stdout: strings.Join(s.Configs, "\n") + "\n"}, nil
	}
	return platform.Result{ExitCode: 127, Stderr: "unexpected command: " + strings.Join(argv, " ")}, nil
}
