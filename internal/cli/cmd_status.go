package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			st, err := a.rec.Status(cmd.Context())
			if err != nil {
				return a.fail("status", err)
			}
			if st.Connected() {
				a.out.Success("Connected to %s", st.Interface)
			} else {
				a.out.Alert("Not connected")
			}
			return nil
		},
	}
}
