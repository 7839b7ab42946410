// Package platform maps host OS/architecture pairs to buildx release asset
// names. Pure string work; no I/O.
package platform

import "fmt"

const tool = "buildx"

// AssetFilename returns the release asset name for a buildx version on the
// given platform, e.g. "buildx-v0.12.0.linux-amd64" or
// "buildx-v0.12.0.windows-amd64.exe".
//
// armVariant selects the 32-bit ARM flavor ("6", "7", ...); it is ignored for
// every other architecture and an empty variant falls back to bare "arm".
func AssetFilename(version, goos, goarch, armVariant string) string {
	arch := goarch
	switch goarch {
	case "x64":
		arch = "amd64"
	case "ppc64":
		arch = "ppc64le"
	case "arm":
		if armVariant != "" {
			arch = fmt.Sprintf("arm-v%s", armVariant)
		}
	}

	// "win32" is accepted as an alias so CI-provided platform tokens work
	// unmodified alongside GOOS values.
	os := goos
	if os == "win32" {
		os = "windows"
	}
	ext := ""
	if os == "windows" {
		ext = ".exe"
	}

	return fmt.Sprintf("%s-v%s.%s-%s%s", tool, version, os, arch, ext)
}

// PluginName returns the docker CLI plugin binary name for the given OS.
func PluginName(goos string) string {
	if goos == "windows" {
		return "docker-buildx.exe"
	}
	return "docker-buildx"
}
