package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached servers, generating the cache from the WireGuard config dir if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			names, err := a.servers.List()
			if err != nil {
				return a.fail("list", err)
			}

			if refresh || len(names) == 0 {
				if !refresh {
					a.out.Println("No server list generated or empty, %s", a.out.Highlight("attempting generation"))
				}
				a.out.Println("Setting server list from %s", a.cfg.WireGuard.Dir)
				names, err = a.servers.Refresh(cmd.Context(), a.elevated, a.cfg.WireGuard.Dir)
				if err != nil {
					return a.fail("list", err)
				}
			}

			if len(names) == 0 {
				a.out.Alert("No WireGuard configs found in %s", a.cfg.WireGuard.Dir)
				return nil
			}
			for _, n := range names {
				a.out.Println("%s", n)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "regenerate the cache before listing")
	return cmd
}
