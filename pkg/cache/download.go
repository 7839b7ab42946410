package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// maxAssetSize caps a single download to guard against a bad redirect (256MB).
const maxAssetSize = 256 * 1024 * 1024

// DefaultHTTPClient returns the client used for asset downloads when the
// caller does not supply one. The timeout is a hang guard only; the subsystem
// performs no retries.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Minute}
}

// Download fetches url to a temporary file owned by the caller and returns
// its path. The caller is expected to hand the file to Store.Save and may
// remove it afterwards.
func Download(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = DefaultHTTPClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "buildx-download-*")
	if err != nil {
		return "", err
	}

	_, err = io.Copy(tmp, io.LimitReader(resp.Body, maxAssetSize))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write download from %s: %w", url, err)
	}

	return tmp.Name(), nil
}
