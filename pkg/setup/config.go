// Package setup loads the optional Setup document that carries the same
// knobs as the CLI flags, so CI runs can check the whole configuration in.
package setup

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/util"
)

const (
	KindSetup = "Setup"
)

type Config struct {
	util.TypeMeta `json:",inline"`
	Metadata      Metadata `json:"metadata,omitempty"`
	Spec          Spec     `json:"spec"`
}

type Metadata struct {
	// Name of this setup, informational only
	Name string `json:"name,omitempty"`
}

type Spec struct {
	// Version specifier: empty for the latest release, a release tag,
	// "pr-<N>" for a pull request's artifact, or a bare workflow run id
	Version string `json:"version,omitempty"`

	// Token used against the CI API; defaults to $GITHUB_TOKEN
	Token string `json:"token,omitempty"`

	// CacheDir roots the local binary cache; defaults to $RUNNER_TOOL_CACHE
	CacheDir string `json:"cacheDir,omitempty"`

	// DockerConfigDir hosts the cli-plugins directory; defaults to
	// $DOCKER_CONFIG or ~/.docker
	DockerConfigDir string `json:"dockerConfigDir,omitempty"`

	// Standalone keeps buildx out of the docker CLI plugin directory and
	// leaves the acquired binary where the cache placed it
	Standalone *bool `json:"standalone,omitempty"`
}

func Read(data []byte) (*Config, error) {
	cfg := &Config{}

	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.TypeMeta.Validate(KindSetup); err != nil {
		return nil, err
	}

	return cfg, nil
}

func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read setup config %s: %w", path, err)
	}

	return Read(data)
}

// Merge returns a copy of base with any field set in override taking
// precedence. Used to layer CLI flags over a checked-in config file.
func Merge(base, override Spec) Spec {
	result := base
	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Token != "" {
		result.Token = override.Token
	}
	if override.CacheDir != "" {
		result.CacheDir = override.CacheDir
	}
	if override.DockerConfigDir != "" {
		result.DockerConfigDir = override.DockerConfigDir
	}
	// Only override when explicitly set.
	if override.Standalone != nil {
		result.Standalone = override.Standalone
	}
	return result
}
