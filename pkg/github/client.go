// Package github is the CI release/artifact API collaborator. It resolves
// buildx releases by tag, maps pull requests to workflow run ids, and
// downloads run artifacts.
package github

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
)

const (
	owner = "docker"
	repo  = "buildx"
)

// Release is the subset of a GitHub release this subsystem consumes.
type Release struct {
	TagName string
}

// API is the capability surface consumed by the acquirer. Implementations
// return errdefs.ErrNotFound-wrapped errors for absent releases, runs and
// artifacts; every other failure propagates untranslated.
type API interface {
	// ReleaseByTag resolves a release by tag; an empty tag resolves the
	// latest stable release.
	ReleaseByTag(ctx context.Context, tag string) (*Release, error)

	// PullRequestRunID resolves the most recent workflow run triggered by
	// the given pull request.
	PullRequestRunID(ctx context.Context, number int) (int64, error)

	// DownloadRunArtifact downloads the buildx artifact produced by a
	// workflow run into destDir and returns the extracted binary path.
	DownloadRunArtifact(ctx context.Context, runID int64, destDir string) (string, error)
}

// Client implements API against api.github.com.
type Client struct {
	gh   *gh.Client
	http *http.Client
}

// New returns a Client authenticated with token. An empty token yields an
// unauthenticated client, which is enough for release downloads but subject
// to low rate limits.
func New(token string) *Client {
	c := gh.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &Client{gh: c, http: http.DefaultClient}
}

// NewWithClient wraps an existing go-github client; used by tests to point
// at a stub server.
func NewWithClient(c *gh.Client) *Client {
	return &Client{gh: c, http: http.DefaultClient}
}

func (c *Client) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	var (
		rel  *gh.RepositoryRelease
		resp *gh.Response
		err  error
	)
	if tag == "" {
		rel, resp, err = c.gh.Repositories.GetLatestRelease(ctx, owner, repo)
	} else {
		rel, resp, err = c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, errdefs.NotFound("no such release: %s", tag)
		}
		return nil, fmt.Errorf("failed to get release %q: %w", tag, err)
	}
	return &Release{TagName: rel.GetTagName()}, nil
}

func (c *Client) PullRequestRunID(ctx context.Context, number int) (int64, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return 0, errdefs.NotFound("no such pull request: %d", number)
		}
		return 0, fmt.Errorf("failed to get pull request %d: %w", number, err)
	}

	runs, _, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, &gh.ListWorkflowRunsOptions{
		Event:   "pull_request",
		HeadSHA: pr.GetHead().GetSHA(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list workflow runs for pr %d: %w", number, err)
	}
	if runs.GetTotalCount() == 0 || len(runs.WorkflowRuns) == 0 {
		return 0, errdefs.NotFound("no workflow run found for pr %d", number)
	}

	// Runs come back newest first.
	return runs.WorkflowRuns[0].GetID(), nil
}

func (c *Client) DownloadRunArtifact(ctx context.Context, runID int64, destDir string) (string, error) {
	artifacts, resp, err := c.gh.Actions.ListWorkflowRunArtifacts(ctx, owner, repo, runID, &gh.ListOptions{})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", errdefs.NotFound("no such workflow run: %d", runID)
		}
		return "", fmt.Errorf("failed to list artifacts for run %d: %w", runID, err)
	}

	artifact := pickArtifact(artifacts.Artifacts)
	if artifact == nil {
		return "", errdefs.NotFound("no artifact found for run %d", runID)
	}

	u, _, err := c.gh.Actions.DownloadArtifact(ctx, owner, repo, artifact.GetID(), 3)
	if err != nil {
		return "", fmt.Errorf("failed to resolve artifact download for run %d: %w", runID, err)
	}

	return fetchAndExtract(ctx, c.http, u.String(), destDir)
}

// pickArtifact prefers the artifact named after the tool; a run with a single
// artifact works regardless of its name.
func pickArtifact(artifacts []*gh.Artifact) *gh.Artifact {
	for _, a := range artifacts {
		if a.GetName() == repo {
			return a
		}
	}
	if len(artifacts) > 0 {
		return artifacts[0]
	}
	return nil
}
