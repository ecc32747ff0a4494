package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newConnectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "connect <server>",
		Short:   "Connect to a server, e.g. `connect se-sto`",
		Example: "  mullctl connect se-sto",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("please specify a server to connect to")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			target := a.cfg.InterfacePrefix + args[0]
			return a.fail("connect "+target, a.connect(cmd.Context(), target))
		},
	}
}
