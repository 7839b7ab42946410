package install

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/platform"
)

// Plugin publishes the acquired binary as a docker CLI plugin under
// dockerConfigDir/cli-plugins, with the platform-correct name and
// owner-executable permission. A previously installed plugin of the same
// name is overwritten. Filesystem errors propagate untranslated.
func Plugin(toolPath, dockerConfigDir string) (string, error) {
	pluginsDir := filepath.Join(dockerConfigDir, "cli-plugins")
	if err := os.MkdirAll(pluginsDir, 0o755); err != nil {
		return "", err
	}

	pluginPath := filepath.Join(pluginsDir, platform.PluginName(runtime.GOOS))
	if err := copyFile(toolPath, pluginPath); err != nil {
		return "", err
	}
	if err := os.Chmod(pluginPath, 0o755); err != nil {
		return "", err
	}
	return pluginPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to install plugin to %s: %w", dst, err)
	}
	return nil
}
