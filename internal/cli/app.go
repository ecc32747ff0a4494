package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/egorlepa/mullctl/internal/config"
	"github.com/egorlepa/mullctl/internal/platform"
	"github.com/egorlepa/mullctl/internal/servers"
	"github.com/egorlepa/mullctl/internal/tunnel"
	"github.com/egorlepa/mullctl/internal/verify"
	"github.com/egorlepa/mullctl/internal/wg"
)

// app is everything one command invocation needs, built from config.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	errorLog *slog.Logger // file only, so failures aren't echoed twice on the console
	out      *Printer
	elevated platform.Runner
	servers  *servers.Store
	rec      *tunnel.Reconciler
	closers  []io.Closer
}

func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}

	a := &app{cfg: cfg, out: NewPrinter(cmd.OutOrStdout())}

	f, err := platform.OpenErrorLog(cfg.Path(platform.ErrorLogFile))
	if err != nil {
		a.logger = platform.NewLogger(level, nil)
		a.errorLog = slog.New(slog.NewTextHandler(io.Discard, nil))
		a.logger.Warn("error log unavailable", "error", err)
	} else {
		a.closers = append(a.closers, f)
		a.logger = platform.NewLogger(level, f)
		a.errorLog = slog.New(platform.NewErrorLogHandler(f, slog.LevelWarn))
	}

	runner := o.runner
	if runner == nil {
		runner = platform.ExecRunner{Timeout: cfg.Timeouts.CommandDuration()}
	}
	a.elevated = platform.Elevated{Runner: runner, Command: cfg.Elevation.Command}

	var reader wg.Reader
	switch cfg.WireGuard.StateSource {
	case "netlink":
		nr, err := wg.NewNetlinkReader(cfg.InterfacePrefix, a.logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, nr)
		reader = nr
	default:
		show := runner
		if cfg.WireGuard.ElevateShow {
			show = a.elevated
		}
		reader = &wg.CommandReader{Runner: show, Prefix: cfg.InterfacePrefix, Logger: a.logger}
	}

	var resolver *verify.Resolver
	if cfg.Verify.Resolver != "" {
		resolver = verify.NewResolver(cfg.Verify.Resolver)
	}
	v := verify.New(cfg.Verify.Endpoint, cfg.Timeouts.HTTPDuration(), resolver, a.logger)

	a.rec = tunnel.NewReconciler(reader, wg.Quick{Runner: a.elevated}, v, a.logger)
	a.servers = servers.NewStore(cfg.Dir())
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
}

// fail records err in the error log against the command that produced it.
func (a *app) fail(command string, err error) error {
	if err != nil {
		a.errorLog.Error("command failed", "command", command, "error", err)
	}
	return err
}

// locked runs fn while holding the invocation lock.
func (a *app) locked(fn func() error) error {
	lock, err := platform.AcquireLock(a.cfg.Path(platform.LockFileName))
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// connect reconciles towards target and reports the outcome.
func (a *app) connect(ctx context.Context, target string) error {
	return a.locked(func() error {
		out, err := a.rec.Connect(ctx, target)
		if err != nil {
			return err
		}

		switch out.Action {
		case tunnel.ActionAlreadyConnected:
			a.out.Alert("You are already connected to %s", target)
			return nil
		case tunnel.ActionSwitched:
			a.out.Notice("Disconnected from %s before connecting to a new server", out.Previous)
		}
		a.out.Success("Connected to %s", target)

		if out.VerifyErr != nil {
			return out.VerifyErr
		}
		a.out.Report(out.Verification)
		if !out.Verification.MatchesTarget {
			return tunnel.ErrNotVerified
		}
		return nil
	})
}
