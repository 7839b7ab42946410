package install

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/cache"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/github"
	"github.com/crazy-max/docker-setup-buildx-action/pkg/platform"
)

const (
	toolName    = "buildx"
	downloadURL = "https://github.com/docker/buildx/releases/download/v%s/%s"
)

// Deps are the capabilities acquisition runs against. OS/Arch default to the
// current runtime when left empty; the ARM variant comes from GOARM.
type Deps struct {
	API   github.API
	Cache cache.Store
	HTTP  *http.Client

	OS         string
	Arch       string
	ARMVariant string
}

func (d *Deps) hostPlatform() (goos, goarch, variant string) {
	goos, goarch, variant = d.OS, d.Arch, d.ARMVariant
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	if goarch == "arm" && variant == "" {
		variant = os.Getenv("GOARM")
	}
	return goos, goarch, variant
}

// Acquire obtains a local copy of the buildx binary for source, consulting
// the cache first. A warm cache answers without any network I/O and always
// returns the same path for the same key. Errors propagate without retry.
func Acquire(ctx context.Context, deps Deps, source Source) (string, error) {
	switch source.Kind {
	case SourceRun:
		return acquireRun(ctx, deps, source.RunID)
	default:
		return acquireRelease(ctx, deps, source.Tag)
	}
}

func acquireRelease(ctx context.Context, deps Deps, tag string) (string, error) {
	release, err := deps.API.ReleaseByTag(ctx, tag)
	if err != nil {
		return "", err
	}

	label := strings.Trim(release.TagName, "v")
	key := cache.Key{Tool: toolName, Version: label}
	if path, ok := deps.Cache.Find(key); ok {
		return path, nil
	}

	if _, err := semver.StrictNewVersion(label); err != nil {
		return "", errdefs.InvalidVersion("release tag %q is not a semantic version", release.TagName)
	}

	goos, goarch, variant := deps.hostPlatform()
	filename := platform.AssetFilename(label, goos, goarch, variant)

	tmp, err := cache.Download(ctx, deps.HTTP, fmt.Sprintf(downloadURL, label, filename))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	return deps.Cache.Save(tmp, filename, key)
}

func acquireRun(ctx context.Context, deps Deps, runID int64) (string, error) {
	key := cache.Key{Tool: toolName, Version: strconv.FormatInt(runID, 10)}
	if path, ok := deps.Cache.Find(key); ok {
		return path, nil
	}

	tmpDir, err := os.MkdirTemp("", "buildx-artifact-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	binPath, err := deps.API.DownloadRunArtifact(ctx, runID, tmpDir)
	if err != nil {
		return "", err
	}

	return deps.Cache.Save(binPath, filepath.Base(binPath), key)
}
