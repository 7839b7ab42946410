package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root setup-buildx command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "setup-buildx",
		Short: "Install and introspect the docker buildx CLI plugin",
		Long: `setup-buildx resolves a buildx version specifier to a concrete binary,
installs it as a docker CLI plugin and reports the state of the running
builder instance. Intended to run inside automated CI jobs.`,
	}

	// Add subcommands
	rootCmd.AddCommand(NewInstallCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
