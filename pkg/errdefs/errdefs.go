// Package errdefs defines the error kinds shared across the setup pipeline.
// Every error stays wrapped around one of these sentinels so callers can
// classify failures with errors.Is without depending on message text.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing release, pull-request run, or artifact.
	ErrNotFound = errors.New("not found")

	// ErrInvalidVersion marks a version label that is not well-formed semver.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrExternalTool marks a wrapped process that exited non-zero with
	// diagnostic output. The message carries the tool's stderr verbatim.
	ErrExternalTool = errors.New("external tool error")

	// ErrParse marks tool output that did not contain the expected pattern.
	ErrParse = errors.New("parse error")
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func InvalidVersion(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidVersion)
}

func ExternalTool(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrExternalTool)
}

func Parse(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrParse)
}

func IsNotFound(err error) bool       { return errors.Is(err, ErrNotFound) }
func IsInvalidVersion(err error) bool { return errors.Is(err, ErrInvalidVersion) }
func IsExternalTool(err error) bool   { return errors.Is(err, ErrExternalTool) }
func IsParse(err error) bool          { return errors.Is(err, ErrParse) }
