// Package buildx introspects the docker buildx CLI plugin: probes for its
// presence, reports its version, and parses builder state out of the
// line-oriented inspect output.
package buildx

import (
	"context"
	"log"
	"strings"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/execx"
)

const dockerBin = "docker"

// Builder is a flat snapshot of `docker buildx inspect` output. Node fields
// are overwritten per parsed block, so a multi-node builder reports only the
// last node seen. This mirrors the line scanner's behavior and is kept
// deliberately; see Inspect.
type Builder struct {
	Name          string
	Driver        string
	NodeName      string
	NodeEndpoint  string
	NodeStatus    string
	NodeFlags     string
	NodePlatforms string
}

// Client runs buildx subcommands through an injected process runner.
type Client struct {
	runner execx.Runner
	warnf  func(format string, args ...any)
}

func NewClient(runner execx.Runner) *Client {
	return &Client{
		runner: runner,
		warnf: func(format string, args ...any) {
			log.Printf("Warning: "+format, args...)
		},
	}
}

// IsAvailable probes whether the buildx subcommand exists at all. The probe
// is deliberately lenient: only a non-zero exit combined with diagnostic
// output means unavailable. Warning text alone does not.
func (c *Client) IsAvailable(ctx context.Context) bool {
	res, err := c.runner.Run(ctx, dockerBin, []string{"buildx"}, execx.Options{
		IgnoreReturnCode: true,
		Silent:           true,
	})
	if err != nil {
		return false
	}
	return !(res.ExitCode != 0 && strings.TrimSpace(res.Stderr) != "")
}

// Version reports the installed buildx version in normalized form, without
// a leading "v".
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.runner.Run(ctx, dockerBin, []string{"buildx", "version"}, execx.Options{
		IgnoreReturnCode: true,
		Silent:           true,
	})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stderr) != "" {
		return "", errdefs.ExternalTool("%s", strings.TrimSpace(res.Stderr))
	}
	return ParseVersion(res.Stdout)
}

// Inspect reports the state of the named builder, or of the current builder
// when name is empty.
func (c *Client) Inspect(ctx context.Context, name string) (*Builder, error) {
	args := []string{"buildx", "inspect"}
	if name != "" {
		args = append(args, name)
	}
	res, err := c.runner.Run(ctx, dockerBin, args, execx.Options{
		IgnoreReturnCode: true,
		Silent:           true,
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stderr) != "" {
		return nil, errdefs.ExternalTool("%s", strings.TrimSpace(res.Stderr))
	}
	return parseInspect(res.Stdout), nil
}

// BuildKitVersion reports the BuildKit version running inside a builder node
// container: resolve the container's image, then ask that image for its
// version. Both steps are best-effort; a failure is logged as a warning and
// an empty or partial result is returned.
func (c *Client) BuildKitVersion(ctx context.Context, containerID string) string {
	res, err := c.runner.Run(ctx, dockerBin, []string{"inspect", "--format", "{{.Config.Image}}", containerID}, execx.Options{
		IgnoreReturnCode: true,
		Silent:           true,
	})
	if err != nil || res.ExitCode != 0 {
		c.warnf("failed to resolve image for container %s: %s", containerID, strings.TrimSpace(res.Stderr))
		return ""
	}

	image := strings.TrimSpace(res.Stdout)
	if image == "" {
		c.warnf("container %s has no image reference", containerID)
		return ""
	}

	res, err = c.runner.Run(ctx, dockerBin, []string{"run", "--rm", image, "--version"}, execx.Options{
		IgnoreReturnCode: true,
		Silent:           true,
	})
	if err != nil || res.ExitCode != 0 {
		c.warnf("failed to get buildkit version from %s: %s", image, strings.TrimSpace(res.Stderr))
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}
