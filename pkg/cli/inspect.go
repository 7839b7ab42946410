package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/buildx"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/execx"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var builderName string
	var withBuildKit bool

	cmd := &cobra.Command{
		Use:   "inspect [builder]",
		Short: "Report buildx and builder state",
		Long: `Probe for the buildx plugin, then report its version and the state of the
named builder (or the current builder when no name is given).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				builderName = args[0]
			}

			ctx := cmd.Context()
			client := buildx.NewClient(execx.New())

			if !client.IsAvailable(ctx) {
				return fmt.Errorf("docker buildx is not available")
			}

			// Version and builder state are independent lookups; each one
			// is itself a sequential process-and-parse chain.
			var version string
			var builder *buildx.Builder
			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				var err error
				version, err = client.Version(egCtx)
				return err
			})
			eg.Go(func() error {
				var err error
				builder, err = client.Inspect(egCtx, builderName)
				return err
			})
			if err := eg.Wait(); err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Printf("buildx %s\n", version)
			printField("Name", builder.Name)
			printField("Driver", builder.Driver)
			printField("Node name", builder.NodeName)
			printField("Node endpoint", builder.NodeEndpoint)
			printField("Node status", builder.NodeStatus)
			printField("Node flags", builder.NodeFlags)
			printField("Node platforms", builder.NodePlatforms)

			if withBuildKit && builder.NodeName != "" {
				// buildx names node containers buildx_buildkit_<node>.
				bk := client.BuildKitVersion(ctx, "buildx_buildkit_"+builder.NodeName)
				printField("BuildKit", bk)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&withBuildKit, "buildkit-version", false, "Also report the BuildKit version of the node container")

	return cmd
}

func printField(name, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %s: %s\n", name, value)
}
