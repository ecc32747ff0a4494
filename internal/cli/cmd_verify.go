package cli

import (
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check which exit node your traffic leaves through",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.rec.Verify(cmd.Context())
			if res != nil {
				a.out.Report(res)
			}
			return a.fail("verify", err)
		},
	}
}
