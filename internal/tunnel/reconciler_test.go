package tunnel_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/egorlepa/mullctl/internal/platform"
	"github.com/egorlepa/mullctl/internal/platform/platformtest"
	"github.com/egorlepa/mullctl/internal/tunnel"
	"github.com/egorlepa/mullctl/internal/verify"
	"github.com/egorlepa/mullctl/internal/wg"
)

type fakeVerifier struct {
	calls  []string
	result *verify.Result
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, expected string) (*verify.Result, error) {
	f.calls = append(f.calls, expected)
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Target = expected
	return &res, nil
}

type harness struct {
	sys      *platformtest.System
	runner   *platformtest.Runner
	verifier *fakeVerifier
	rec      *tunnel.Reconciler
}

func newHarness(active string) *harness {
	sys := &platformtest.System{Active: active}
	runner := sys.Runner()
	v := &fakeVerifier{result: &verify.Result{IP: "1.2.3.4", ExitIP: "1.2.3.4", MatchesTarget: true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := tunnel.NewReconciler(
		&wg.CommandReader{Runner: runner, Prefix: "mullvad-", Logger: logger},
		wg.Quick{Runner: platform.Elevated{Runner: runner, Command: "doas"}},
		v,
		logger,
	)
	return &harness{sys: sys, runner: runner, verifier: v, rec: rec}
}

func TestConnectFromDisconnected(t *testing.T) {
	h := newHarness("")

	out, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != tunnel.ActionConnected {
		t.Errorf("Action = %v, want connected", out.Action)
	}
	want := []string{
		"wg show interfaces",
		"doas wg-quick up mullvad-se-sto",
		"wg show interfaces",
	}
	if diff := cmp.Diff(want, h.runner.Calls()); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mullvad-se-sto"}, h.verifier.calls); diff != "" {
		t.Errorf("verify calls (-want +got):\n%s", diff)
	}
	if out.State.Interface != "mullvad-se-sto" {
		t.Errorf("State = %v", out.State)
	}
	if out.Verification == nil || !out.Verification.MatchesTarget {
		t.Errorf("Verification = %+v, want matched", out.Verification)
	}
}

func TestConnectAlreadyConnectedIsNoop(t *testing.T) {
	for _, target := range []string{"mullvad-se-sto", "mullvad-de-fra", "wg0"} {
		h := newHarness(target)

		out, err := h.rec.Connect(context.Background(), target)
		if err != nil {
			t.Fatal(err)
		}
		if out.Action != tunnel.ActionAlreadyConnected {
			t.Errorf("%s: Action = %v, want already connected", target, out.Action)
		}
		if diff := cmp.Diff([]string{"wg show interfaces"}, h.runner.Calls()); diff != "" {
			t.Errorf("%s: mutating calls issued (-want +got):\n%s", target, diff)
		}
		if len(h.verifier.calls) != 0 {
			t.Errorf("%s: verify called %d times", target, len(h.verifier.calls))
		}
	}
}

func TestConnectSwitchesDownBeforeUp(t *testing.T) {
	h := newHarness("mullvad-de-fra")

	out, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != tunnel.ActionSwitched || out.Previous != "mullvad-de-fra" {
		t.Errorf("outcome = %+v", out)
	}
	want := []string{
		"wg show interfaces",
		"doas wg-quick down mullvad-de-fra",
		"doas wg-quick up mullvad-se-sto",
		"wg show interfaces",
	}
	if diff := cmp.Diff(want, h.runner.Calls()); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestConnectSwitchAbortsWhenDownFails(t *testing.T) {
	h := newHarness("mullvad-de-fra")
	h.sys.FailDown = true

	_, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	var exitErr *platform.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	for _, c := range h.runner.Calls() {
		if c == "doas wg-quick up mullvad-se-sto" {
			t.Fatal("up issued after failed down")
		}
	}
}

func TestConnectUpFailureSkipsVerification(t *testing.T) {
	h := newHarness("")
	h.sys.FailUp = true

	_, err := h.rec.Connect(context.Background(), "mullvad-xx-nope")
	var exitErr *platform.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if len(h.verifier.calls) != 0 {
		t.Errorf("verify called after failed up")
	}
}

func TestConnectVerificationFailureKeepsConnection(t *testing.T) {
	h := newHarness("")
	h.verifier.err = &verify.NetworkError{URL: "https://am.i.mullvad.net/json", Err: errors.New("timeout")}

	out, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	var ne *verify.NetworkError
	if !errors.As(out.VerifyErr, &ne) {
		t.Errorf("VerifyErr = %v, want *NetworkError", out.VerifyErr)
	}
	if h.sys.Active != "mullvad-se-sto" {
		t.Errorf("Active = %q", h.sys.Active)
	}
}

func TestConnectIntrospectionFailure(t *testing.T) {
	h := newHarness("")
	h.sys.FailShow = true

	_, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	var ie *wg.IntrospectionError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *IntrospectionError", err)
	}
	if len(h.runner.Calls()) != 1 {
		t.Errorf("calls = %v, want only the state read", h.runner.Calls())
	}
}

func TestConnectEmptyTarget(t *testing.T) {
	h := newHarness("")
	if _, err := h.rec.Connect(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty target")
	}
	if len(h.runner.Calls()) != 0 {
		t.Errorf("calls = %v, want none", h.runner.Calls())
	}
}

func TestStatusAfterConnect(t *testing.T) {
	h := newHarness("")
	ctx := context.Background()

	if _, err := h.rec.Connect(ctx, "mullvad-ch-zrh"); err != nil {
		t.Fatal(err)
	}
	st, err := h.rec.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st != (wg.State{Interface: "mullvad-ch-zrh"}) {
		t.Errorf("Status = %v, want connected(mullvad-ch-zrh)", st)
	}
}

func TestDisconnect(t *testing.T) {
	h := newHarness("mullvad-se-sto")

	out, err := h.rec.Disconnect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != tunnel.ActionDisconnected || out.Interface != "mullvad-se-sto" {
		t.Errorf("outcome = %+v", out)
	}
	want := []string{"wg show interfaces", "doas wg-quick down mullvad-se-sto"}
	if diff := cmp.Diff(want, h.runner.Calls()); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
	if h.sys.Active != "" {
		t.Errorf("Active = %q after disconnect", h.sys.Active)
	}
}

func TestDisconnectWhenDisconnectedIsNoop(t *testing.T) {
	h := newHarness("")

	out, err := h.rec.Disconnect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != tunnel.ActionNotConnected {
		t.Errorf("Action = %v, want not connected", out.Action)
	}
	if diff := cmp.Diff([]string{"wg show interfaces"}, h.runner.Calls()); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestDisconnectFailure(t *testing.T) {
	h := newHarness("mullvad-se-sto")
	h.sys.FailDown = true

	_, err := h.rec.Disconnect(context.Background())
	var exitErr *platform.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
}

func TestVerifyNotMatched(t *testing.T) {
	h := newHarness("")
	h.verifier.result = &verify.Result{IP: "5.6.7.8"}

	res, err := h.rec.Verify(context.Background())
	if !errors.Is(err, tunnel.ErrNotVerified) {
		t.Fatalf("err = %v, want ErrNotVerified", err)
	}
	if res == nil || res.IP != "5.6.7.8" {
		t.Errorf("result = %+v, want report returned alongside error", res)
	}
}

func TestVerifyUsesCurrentInterface(t *testing.T) {
	h := newHarness("mullvad-se-sto")

	if _, err := h.rec.Verify(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"mullvad-se-sto"}, h.verifier.calls); diff != "" {
		t.Errorf("verify calls (-want +got):\n%s", diff)
	}
}

func TestConnectTargetMissingAfterUp(t *testing.T) {
	h := newHarness("")
	h.sys.DropUp = true

	out, err := h.rec.Connect(context.Background(), "mullvad-se-sto")
	if !errors.Is(err, tunnel.ErrNotActive) {
		t.Fatalf("err = %v, want ErrNotActive", err)
	}
	if out == nil || out.State.Connected() {
		t.Errorf("outcome = %+v, want re-read disconnected state", out)
	}
	if len(h.verifier.calls) != 0 {
		t.Errorf("verify called %d times for an inactive target", len(h.verifier.calls))
	}
}

func TestActionString(t *testing.T) {
	tests := map[tunnel.Action]string{
		tunnel.ActionConnected:        "connected",
		tunnel.ActionSwitched:         "switched",
		tunnel.ActionAlreadyConnected: "already connected",
		tunnel.ActionDisconnected:     "disconnected",
		tunnel.ActionNotConnected:     "not connected",
		tunnel.Action(0):              "unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", int(a), got, want)
		}
	}
}
