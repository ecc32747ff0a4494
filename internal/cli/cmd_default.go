package cli

import (
	"github.com/spf13/cobra"
)

func newDefaultCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "default [server]",
		Short: "Set the default server, or connect to it when no server is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if len(args) == 1 {
				name := a.cfg.InterfacePrefix + args[0]
				if err := a.servers.SetDefault(name); err != nil {
					return a.fail("default "+name, err)
				}
				a.out.Success("Default server set to %s", name)
				return nil
			}

			name, err := a.servers.Default()
			if err != nil {
				return a.fail("default", err)
			}
			if name == "" {
				a.out.Alert("Currently no default server is set")
				a.out.Println("Set one with %s", a.out.Highlight("mullctl default <server>"))
				return nil
			}
			a.out.Println("Connecting to default server %s", a.out.Highlight(name))
			return a.fail("default "+name, a.connect(cmd.Context(), name))
		},
	}
}
