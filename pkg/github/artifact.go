package github

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
)

// fetchAndExtract downloads an artifact zip and extracts the binary it
// contains into destDir. Workflow artifacts are always delivered zipped,
// even when they hold a single file.
func fetchAndExtract(ctx context.Context, client *http.Client, url, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download artifact: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(destDir, "artifact-*.zip")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write artifact zip: %w", err)
	}

	return extractBinary(tmp.Name(), destDir)
}

// extractBinary pulls the first regular file out of the artifact zip.
func extractBinary(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to read %s from artifact: %w", f.Name, err)
		}

		dst := filepath.Join(destDir, filepath.Base(f.Name))
		out, err := os.Create(dst)
		if err != nil {
			rc.Close()
			return "", err
		}

		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		return dst, nil
	}

	return "", errdefs.NotFound("artifact zip contains no files")
}
