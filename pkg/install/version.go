// Package install turns a loosely-specified buildx version into an installed
// docker CLI plugin: classify the specifier, acquire a local binary, publish
// it into the plugin directory.
package install

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/github"
)

// SourceKind discriminates the two acquisition paths.
type SourceKind string

const (
	// SourceRelease acquires from a published release; an empty tag means
	// the latest stable release.
	SourceRelease SourceKind = "release"

	// SourceRun acquires the artifact produced by a CI workflow run.
	SourceRun SourceKind = "run"
)

// Source is the resolved form of a version specifier. It is created once by
// ResolveSource and consumed once by Acquire.
type Source struct {
	Kind  SourceKind
	Tag   string
	RunID int64
}

func (s Source) String() string {
	if s.Kind == SourceRun {
		return fmt.Sprintf("run %d", s.RunID)
	}
	if s.Tag == "" {
		return "latest release"
	}
	return fmt.Sprintf("release %s", s.Tag)
}

var prSpec = regexp.MustCompile(`pr-(\d+)`)

// ResolveSource classifies a version specifier. In order: an empty specifier
// routes to the latest release with no further parsing; a "pr-<N>" specifier
// resolves the pull request's workflow run via api; a bare integer is taken
// as a run id directly; anything else is treated as a release tag.
//
// A pull request with no qualifying run fails with a not-found error; there
// is no fallback to the release path.
func ResolveSource(ctx context.Context, api github.API, spec string) (Source, error) {
	if spec == "" {
		return Source{Kind: SourceRelease}, nil
	}

	if m := prSpec.FindStringSubmatch(spec); m != nil {
		number, err := strconv.Atoi(m[1])
		if err != nil {
			return Source{}, fmt.Errorf("invalid pull request number in %q: %w", spec, err)
		}
		runID, err := api.PullRequestRunID(ctx, number)
		if err != nil {
			return Source{}, err
		}
		return Source{Kind: SourceRun, RunID: runID}, nil
	}

	if runID, err := strconv.ParseInt(spec, 10, 64); err == nil && runID > 0 {
		return Source{Kind: SourceRun, RunID: runID}, nil
	}

	return Source{Kind: SourceRelease, Tag: spec}, nil
}
