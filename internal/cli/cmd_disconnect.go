package cli

import (
	"github.com/spf13/cobra"

	"github.com/egorlepa/mullctl/internal/tunnel"
)

func newDisconnectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect from the active server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			err = a.locked(func() error {
				out, err := a.rec.Disconnect(cmd.Context())
				if err != nil {
					return err
				}
				if out.Action == tunnel.ActionNotConnected {
					a.out.Alert("You are currently not connected to a server")
					return nil
				}
				a.out.Success("Successfully disconnected from %s", out.Interface)
				return nil
			})
			return a.fail("disconnect", err)
		},
	}
}
