package wg

import (
	"context"
	"strings"

	"github.com/egorlepa/mullctl/internal/platform"
)

// Quick brings interfaces up and down with wg-quick. Runner is expected to
// be elevated.
type Quick struct {
	Runner platform.Runner
}

// Up runs `wg-quick up iface`.
func (q Quick) Up(ctx context.Context, iface string) error {
	return q.run(ctx, "up", iface)
}

// Down runs `wg-quick down iface`.
func (q Quick) Down(ctx context.Context, iface string) error {
	return q.run(ctx, "down", iface)
}

func (q Quick) run(ctx context.Context, action, iface string) error {
	argv := []string{platform.WGQuickBinary, action, iface}
	res, err := q.Runner.Run(ctx, argv...)
	if err != nil {
		return err
	}
	return res.Err(argv)
}

// ListConfigs returns the interface names defined by *.conf files in dir.
// The directory is usually root-only, so it is listed with `ls` through the
// given (elevated) runner rather than read directly.
func ListConfigs(ctx context.Context, runner platform.Runner, dir string) ([]string, error) {
	argv := []string{"ls", dir}
	res, err := runner.Run(ctx, argv...)
	if err != nil {
		return nil, err
	}
	if err := res.Err(argv); err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutSuffix(line, ".conf"); ok && name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
