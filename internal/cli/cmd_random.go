package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/egorlepa/mullctl/internal/servers"
)

func newRandomCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "random [region]",
		Short:   "Connect to a random server from the cached list",
		Example: "  mullctl random\n  mullctl random se",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var region string
			if len(args) == 1 {
				region = args[0]
				a.out.Println("Finding a server within the region: %s", a.out.Highlight(region))
			}

			name, err := a.servers.Random(region, a.cfg.InterfacePrefix)
			if err != nil {
				if errors.Is(err, servers.ErrNoServers) {
					err = fmt.Errorf("%w; run `mullctl list` to ensure there are servers", err)
				}
				return a.fail("random", err)
			}

			a.out.Println("Connecting to %s", a.out.Highlight(name))
			return a.fail("random "+name, a.connect(cmd.Context(), name))
		},
	}
}
