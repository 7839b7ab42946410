package buildx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
)

func TestParseVersion(t *testing.T) {
	tests := map[string]struct {
		output      string
		expected    string
		expectErr   bool
		errContains string
	}{
		"standard buildx version line": {
			output:   "github.com/docker/buildx v0.11.2 abcdef",
			expected: "0.11.2",
		},
		"bare version without v": {
			output:   "buildx 0.10.0",
			expected: "0.10.0",
		},
		"pre-release version": {
			output:   "github.com/docker/buildx v0.12.0-rc2 deadbeef",
			expected: "0.12.0-rc2",
		},
		"no version-looking token": {
			output:      "buildx: command not found",
			expectErr:   true,
			errContains: "cannot parse buildx version",
		},
		"empty output": {
			output:      "",
			expectErr:   true,
			errContains: "cannot parse buildx version",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseVersion(tc.output)

			if tc.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errdefs.ErrParse)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

const inspectFixture = `Name: mybuilder
Driver: docker-container

Name: mybuilder0
Endpoint: unix:///var/run/docker.sock
Status: running
Platforms: linux/amd64, linux/arm64`

func TestParseInspect(t *testing.T) {
	t.Run("builder with one node", func(t *testing.T) {
		b := parseInspect(inspectFixture)

		assert.Equal(t, "mybuilder", b.Name)
		assert.Equal(t, "docker-container", b.Driver)
		assert.Equal(t, "mybuilder0", b.NodeName)
		assert.Equal(t, "unix:///var/run/docker.sock", b.NodeEndpoint)
		assert.Equal(t, "running", b.NodeStatus)
		assert.Equal(t, "linux/amd64,linux/arm64", b.NodePlatforms, "platform list whitespace is stripped")
	})

	t.Run("scan stops at first Platforms line", func(t *testing.T) {
		b := parseInspect(inspectFixture + "\nStatus: stopped\n\nName: mybuilder1\nStatus: stopped\n")

		// Fields after Platforms are never read.
		assert.Equal(t, "mybuilder0", b.NodeName)
		assert.Equal(t, "running", b.NodeStatus)
	})

	t.Run("last node wins in the flat model", func(t *testing.T) {
		b := parseInspect(`Name: grp
Driver: docker-container

Name: grp0
Status: running

Name: grp1
Endpoint: ssh://worker
Status: stopped
Platforms: linux/arm64`)

		assert.Equal(t, "grp", b.Name)
		assert.Equal(t, "grp1", b.NodeName)
		assert.Equal(t, "ssh://worker", b.NodeEndpoint)
		assert.Equal(t, "stopped", b.NodeStatus)
		assert.Equal(t, "linux/arm64", b.NodePlatforms)
	})

	t.Run("first Name line names the builder even mid-block", func(t *testing.T) {
		b := parseInspect("Driver: docker-container\nName: mybuilder\n")

		assert.Equal(t, "mybuilder", b.Name)
		assert.Equal(t, "docker-container", b.Driver)
		assert.Empty(t, b.NodeName)
	})

	t.Run("crlf endings parse identically", func(t *testing.T) {
		lf := parseInspect(inspectFixture)
		crlf := parseInspect(strings.ReplaceAll(inspectFixture, "\n", "\r\n"))
		assert.Equal(t, lf, crlf)
	})

	t.Run("mixed endings parse identically", func(t *testing.T) {
		mixed := strings.Replace(inspectFixture, "Driver: docker-container\n", "Driver: docker-container\r\n", 1)
		assert.Equal(t, parseInspect(inspectFixture), parseInspect(mixed))
	})

	t.Run("blank keys and values are skipped", func(t *testing.T) {
		b := parseInspect("Name: solo\n: orphan value\nFlags:\nDriver: docker\nunkeyed line\n")

		assert.Equal(t, "solo", b.Name)
		assert.Equal(t, "docker", b.Driver)
		assert.Empty(t, b.NodeFlags)
	})

	t.Run("unrecognized keys are ignored", func(t *testing.T) {
		b := parseInspect("Name: solo\nBuildkit: v0.12.4\nDriver: docker\n")

		assert.Equal(t, "solo", b.Name)
		assert.Equal(t, "docker", b.Driver)
	})

	t.Run("flags are captured per node", func(t *testing.T) {
		b := parseInspect("Name: b\nDriver: docker-container\n\nName: b0\nFlags: --allow-insecure-entitlement security.insecure\nPlatforms: linux/amd64")

		assert.Equal(t, "--allow-insecure-entitlement security.insecure", b.NodeFlags)
	})
}
