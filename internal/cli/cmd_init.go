package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egorlepa/mullctl/internal/config"
	"github.com/egorlepa/mullctl/internal/platform"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists; use --force to overwrite", path)
			} else if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("stat config: %w: %w", platform.ErrPersistence, err)
			}

			cfg := config.Defaults()
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			NewPrinter(cmd.OutOrStdout()).Success("Wrote default config to %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config")
	return cmd
}
