package buildx

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/execx"
)

// fakeRunner scripts results per invocation, keyed by the full command line.
type fakeRunner struct {
	results map[string]execx.Result
	calls   []string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args []string, opts execx.Options) (execx.Result, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, cmdline)

	res, ok := r.results[cmdline]
	if !ok {
		return execx.Result{}, fmt.Errorf("unexpected command: %s", cmdline)
	}
	return res, nil
}

func newTestClient(r *fakeRunner) (*Client, *[]string) {
	c := NewClient(r)
	warnings := &[]string{}
	c.warnf = func(format string, args ...any) {
		*warnings = append(*warnings, fmt.Sprintf(format, args...))
	}
	return c, warnings
}

func TestIsAvailable(t *testing.T) {
	tests := map[string]struct {
		result   execx.Result
		expected bool
	}{
		"zero exit, no output": {
			result:   execx.Result{},
			expected: true,
		},
		"zero exit with warning text": {
			result:   execx.Result{Stderr: "WARNING: experimental feature"},
			expected: true,
		},
		"non-zero exit without diagnostics": {
			result:   execx.Result{ExitCode: 1},
			expected: true,
		},
		"non-zero exit with diagnostics": {
			result:   execx.Result{ExitCode: 1, Stderr: "docker: 'buildx' is not a docker command."},
			expected: false,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &fakeRunner{results: map[string]execx.Result{
				"docker buildx": tc.result,
			}}
			client, _ := newTestClient(runner)

			assert.Equal(t, tc.expected, client.IsAvailable(context.Background()))
		})
	}
}

func TestVersion(t *testing.T) {
	t.Run("parses and cleans the version token", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx version": {Stdout: "github.com/docker/buildx v0.11.2 abcdef\n"},
		}}
		client, _ := newTestClient(runner)

		version, err := client.Version(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "0.11.2", version)
	})

	t.Run("tool failure carries the diagnostic text", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx version": {ExitCode: 125, Stderr: "some docker failure"},
		}}
		client, _ := newTestClient(runner)

		_, err := client.Version(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errdefs.ErrExternalTool)
		assert.Contains(t, err.Error(), "some docker failure")
	})

	t.Run("output without a version token is a parse error", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx version": {Stdout: "no useful output"},
		}}
		client, _ := newTestClient(runner)

		_, err := client.Version(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errdefs.ErrParse)
	})
}

func TestInspect(t *testing.T) {
	t.Run("named builder", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx inspect mybuilder": {Stdout: inspectFixture},
		}}
		client, _ := newTestClient(runner)

		b, err := client.Inspect(context.Background(), "mybuilder")
		require.NoError(t, err)
		assert.Equal(t, "mybuilder", b.Name)
		assert.Equal(t, "mybuilder0", b.NodeName)
	})

	t.Run("current builder when unnamed", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx inspect": {Stdout: "Name: default\nDriver: docker\n"},
		}}
		client, _ := newTestClient(runner)

		b, err := client.Inspect(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "default", b.Name)
	})

	t.Run("tool failure is fatal", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker buildx inspect ghost": {ExitCode: 1, Stderr: `ERROR: no builder "ghost" found`},
		}}
		client, _ := newTestClient(runner)

		_, err := client.Inspect(context.Background(), "ghost")
		require.Error(t, err)
		assert.ErrorIs(t, err, errdefs.ErrExternalTool)
		assert.Contains(t, err.Error(), `no builder "ghost" found`)
	})
}

func TestBuildKitVersion(t *testing.T) {
	t.Run("resolves image then asks it for its version", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker inspect --format {{.Config.Image}} buildx_buildkit_b0": {Stdout: "moby/buildkit:buildx-stable-1\n"},
			"docker run --rm moby/buildkit:buildx-stable-1 --version":      {Stdout: "buildkitd github.com/moby/buildkit v0.12.4 abc\n"},
		}}
		client, warnings := newTestClient(runner)

		got := client.BuildKitVersion(context.Background(), "buildx_buildkit_b0")
		assert.Equal(t, "buildkitd github.com/moby/buildkit v0.12.4 abc", got)
		assert.Empty(t, *warnings)
	})

	t.Run("container resolution failure downgrades to a warning", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker inspect --format {{.Config.Image}} gone": {ExitCode: 1, Stderr: "Error: No such object: gone"},
		}}
		client, warnings := newTestClient(runner)

		got := client.BuildKitVersion(context.Background(), "gone")
		assert.Empty(t, got)
		require.Len(t, *warnings, 1)
		assert.Contains(t, (*warnings)[0], "gone")
	})

	t.Run("version step failure downgrades to a warning", func(t *testing.T) {
		runner := &fakeRunner{results: map[string]execx.Result{
			"docker inspect --format {{.Config.Image}} buildx_buildkit_b0": {Stdout: "moby/buildkit:buildx-stable-1\n"},
			"docker run --rm moby/buildkit:buildx-stable-1 --version":      {ExitCode: 127, Stderr: "exec failed"},
		}}
		client, warnings := newTestClient(runner)

		got := client.BuildKitVersion(context.Background(), "buildx_buildkit_b0")
		assert.Empty(t, got)
		require.Len(t, *warnings, 1)
	})
}
