package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/buildx"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/execx"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report the installed buildx version",
		Long:  `Probe for the buildx plugin and print its version in normalized form, without a leading "v".`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := buildx.NewClient(execx.New())

			if !client.IsAvailable(ctx) {
				return fmt.Errorf("docker buildx is not available")
			}

			version, err := client.Version(ctx)
			if err != nil {
				return err
			}

			fmt.Println(version)
			return nil
		},
	}
}
