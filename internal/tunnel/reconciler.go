// Package tunnel reconciles the live WireGuard state towards a requested
// interface and verifies the resulting exit node.
package tunnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/egorlepa/mullctl/internal/verify"
	"github.com/egorlepa/mullctl/internal/wg"
)

var (
	// ErrNotVerified is returned by Verify when the endpoint reports no exit IP.
	ErrNotVerified = errors.New("exit node not verified")

	// ErrNotActive is returned by Connect when wg-quick up succeeded but the
	// target is not the active interface afterwards.
	ErrNotActive = errors.New("interface not active after up")
)

// Switcher brings interfaces up and down. wg.Quick implements it.
type Switcher interface {
	Up(ctx context.Context, iface string) error
	Down(ctx context.Context, iface string) error
}

// Verifier reports the current exit node. *verify.Verifier implements it.
type Verifier interface {
	Verify(ctx context.Context, expected string) (*verify.Result, error)
}

// Action describes what a reconcile step did. The zero Action is never
// produced by a Reconciler.
type Action int

const (
	ActionConnected        Action = iota + 1 // was disconnected, brought target up
	ActionSwitched                           // took another interface down, brought target up
	ActionAlreadyConnected                   // target already up, nothing done
	ActionDisconnected                       // took the active interface down
	ActionNotConnected                       // nothing was up, nothing done
)

func (a Action) String() string {
	switch a {
	case ActionConnected:
		return "connected"
	case ActionSwitched:
		return "switched"
	case ActionAlreadyConnected:
		return "already connected"
	case ActionDisconnected:
		return "disconnected"
	case ActionNotConnected:
		return "not connected"
	}
	return "unknown"
}

// ConnectOutcome is the result of Connect.
type ConnectOutcome struct {
	Action   Action
	Target   string
	Previous string   // interface taken down when switching
	State    wg.State // state re-read after the change

	// Verification is nil when nothing changed or verification failed;
	// VerifyErr then says why. A failed verification does not undo the
	// connection.
	Verification *verify.Result
	VerifyErr    error
}

// DisconnectOutcome is the result of Disconnect.
type DisconnectOutcome struct {
	Action    Action
	Interface string
}

// Reconciler drives the live state towards the requested interface:
//  1. Read the current state
//  2. No-op if the target is already up
//  3. Take any other interface down and wait for it
//  4. Bring the target up
//  5. Re-read the state, check the target is up and verify the exit node
type Reconciler struct {
	State    wg.Reader
	Switch   Switcher
	Verifier Verifier
	Logger   *slog.Logger
}

// NewReconciler creates a Reconciler from its collaborators.
func NewReconciler(state wg.Reader, sw Switcher, v Verifier, logger *slog.Logger) *Reconciler {
	return &Reconciler{State: state, Switch: sw, Verifier: v, Logger: logger}
}

// Connect makes target the active interface.
func (r *Reconciler) Connect(ctx context.Context, target string) (*ConnectOutcome, error) {
	if target == "" {
		return nil, errors.New("connect: empty interface name")
	}

	current, err := r.State.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := &ConnectOutcome{Action: ActionConnected, Target: target}

	switch {
	case current.Interface == target:
		r.Logger.Info("already connected", "interface", target)
		out.Action = ActionAlreadyConnected
		out.State = current
		return out, nil
	case current.Connected():
		r.Logger.Info("switching interface", "from", current.Interface, "to", target)
		if err := r.Switch.Down(ctx, current.Interface); err != nil {
			return nil, fmt.Errorf("disconnect %s: %w", current.Interface, err)
		}
		out.Action = ActionSwitched
		out.Previous = current.Interface
	}

	r.Logger.Info("bringing interface up", "interface", target)
	if err := r.Switch.Up(ctx, target); err != nil {
		return out, fmt.Errorf("connect %s: %w", target, err)
	}

	after, err := r.State.Current(ctx)
	if err != nil {
		return out, err
	}
	out.State = after
	if after.Interface != target {
		return out, fmt.Errorf("connect %s: %w (state %s)", target, ErrNotActive, after)
	}

	out.Verification, out.VerifyErr = r.Verifier.Verify(ctx, target)
	if out.VerifyErr != nil {
		r.Logger.Info("verification failed", "interface", target, "error", out.VerifyErr)
	}
	return out, nil
}

// Disconnect takes the active interface down, if any.
func (r *Reconciler) Disconnect(ctx context.Context) (*DisconnectOutcome, error) {
	current, err := r.State.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !current.Connected() {
		return &DisconnectOutcome{Action: ActionNotConnected}, nil
	}

	r.Logger.Info("bringing interface down", "interface", current.Interface)
	if err := r.Switch.Down(ctx, current.Interface); err != nil {
		return nil, fmt.Errorf("disconnect %s: %w", current.Interface, err)
	}
	return &DisconnectOutcome{Action: ActionDisconnected, Interface: current.Interface}, nil
}

// Status reads the current state without changing anything.
func (r *Reconciler) Status(ctx context.Context) (wg.State, error) {
	return r.State.Current(ctx)
}

// Verify checks the exit node for whatever is currently up. The result is
// returned together with ErrNotVerified when no exit IP was observed.
func (r *Reconciler) Verify(ctx context.Context) (*verify.Result, error) {
	current, err := r.State.Current(ctx)
	if err != nil {
		return nil, err
	}
	res, err := r.Verifier.Verify(ctx, current.Interface)
	if err != nil {
		return nil, err
	}
	if !res.MatchesTarget {
		return res, ErrNotVerified
	}
	return res, nil
}
