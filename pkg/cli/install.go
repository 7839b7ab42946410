package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/buildx"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/cache"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/execx"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/github"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/install"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/setup"
)

// NewInstallCmd creates the install command
func NewInstallCmd() *cobra.Command {
	var configFile string
	var standalone bool
	flagSpec := setup.Spec{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install buildx as a docker CLI plugin",
		Long: `Resolve a version specifier to a buildx binary and install it under the
docker CLI plugin directory. The specifier may be empty (latest release), a
release tag, "pr-<N>" for a pull request's build artifact, or a workflow
run id.`,
		Example: `  setup-buildx install
  setup-buildx install --version v0.12.0
  setup-buildx install --version pr-1234
  setup-buildx install --config setup.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("standalone") {
				flagSpec.Standalone = &standalone
			}

			spec := flagSpec
			if configFile != "" {
				cfg, err := setup.FromFile(configFile)
				if err != nil {
					return fmt.Errorf("failed to load setup config: %w", err)
				}
				// Flags win over the checked-in file.
				spec = setup.Merge(cfg.Spec, flagSpec)
			}
			if err := applyDefaults(&spec); err != nil {
				return err
			}

			return runInstall(cmd.Context(), spec)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a Setup YAML document")
	cmd.Flags().StringVar(&flagSpec.Version, "version", getEnvOrDefault("BUILDX_VERSION", ""), "buildx version specifier")
	cmd.Flags().StringVar(&flagSpec.Token, "token", getEnvOrDefault("GITHUB_TOKEN", ""), "GitHub API token")
	cmd.Flags().StringVar(&flagSpec.CacheDir, "cache-dir", getEnvOrDefault("RUNNER_TOOL_CACHE", ""), "Local binary cache directory")
	cmd.Flags().StringVar(&flagSpec.DockerConfigDir, "docker-config", getEnvOrDefault("DOCKER_CONFIG", ""), "Docker config directory hosting cli-plugins")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "Skip plugin install and keep the binary standalone")

	return cmd
}

func runInstall(ctx context.Context, spec setup.Spec) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	api := github.New(spec.Token)

	source, err := install.ResolveSource(ctx, api, spec.Version)
	if err != nil {
		return fmt.Errorf("failed to resolve version %q: %w", spec.Version, err)
	}
	cyan.Printf("Downloading buildx (%s)...\n", source)

	binPath, err := install.Acquire(ctx, install.Deps{
		API:   api,
		Cache: cache.NewDirStore(spec.CacheDir),
	}, source)
	if err != nil {
		return fmt.Errorf("failed to acquire buildx: %w", err)
	}

	if spec.Standalone != nil && *spec.Standalone {
		green.Printf("✓ buildx available at %s (standalone)\n", binPath)
		return nil
	}

	pluginPath, err := install.Plugin(binPath, spec.DockerConfigDir)
	if err != nil {
		return fmt.Errorf("failed to install plugin: %w", err)
	}
	green.Printf("✓ Installed %s\n", pluginPath)

	client := buildx.NewClient(execx.New())
	if !client.IsAvailable(ctx) {
		return fmt.Errorf("buildx is unavailable after install")
	}
	version, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify buildx version: %w", err)
	}
	green.Printf("✓ buildx %s ready\n", version)

	return nil
}

func applyDefaults(spec *setup.Spec) error {
	if spec.CacheDir == "" {
		spec.CacheDir = filepath.Join(os.TempDir(), "setup-buildx-cache")
	}
	if spec.DockerConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve the docker config directory: %w", err)
		}
		spec.DockerConfigDir = filepath.Join(home, ".docker")
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
