package platform

import "context"

// Elevated runs commands through a privilege-escalation helper (doas, sudo).
// An empty Command runs them unchanged, which is what you want when the tool
// itself already runs as root.
type Elevated struct {
	Runner  Runner
	Command string
}

func (e Elevated) Run(ctx context.Context, argv ...string) (Result, error) {
	if e.Command == "" {
		return e.Runner.Run(ctx, argv...)
	}
	return e.Runner.Run(ctx, append([]string{e.Command}, argv...)...)
}
