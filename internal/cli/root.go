package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/egorlepa/mullctl/internal/platform"
)

// version is set at build time via ldflags.
var version = "dev"

// rootOptions carries global flags and test seams to every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string

	// runner replaces real subprocesses when set.
	runner platform.Runner
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "mullctl",
		Short:         "Connect, disconnect and verify Mullvad WireGuard tunnels via wg-quick",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&opts.configPath, "config", platform.DefaultConfigFile(), "config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		newConnectCmd(opts),
		newDisconnectCmd(opts),
		newStatusCmd(opts),
		newVerifyCmd(opts),
		newDefaultCmd(opts),
		newRandomCmd(opts),
		newListCmd(opts),
		newInitCmd(opts),
		newVersionCmd(),
	)

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	NewPrinter(os.Stderr).Alert("Error: %v", err)
	return ExitCode(err)
}

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
