package buildx

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/crazy-max/docker-setup-buildx-action/pkg/errdefs"
)

var versionPattern = regexp.MustCompile(`\bv?(\d+\.\d+\.\d+[\w.-]*)`)

// ParseVersion extracts the first version-looking token from buildx version
// output and returns it in cleaned semantic-version form.
func ParseVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", errdefs.Parse("cannot parse buildx version from %q", strings.TrimSpace(output))
	}
	if v, err := semver.NewVersion(m[1]); err == nil {
		return v.String(), nil
	}
	return m[1], nil
}

// scanState classifies inspect output lines. A block opens on its first
// key line and closes on a blank or malformed line.
type scanState int

const (
	awaitingKey scanState = iota
	inBlock
)

// parseInspect scans the colon-delimited inspect output. The first Name line
// names the builder itself; each later Name line opens a node block and
// overwrites the node fields, so only the last node survives. The scan stops
// the instant a Platforms line is seen; anything after it is never read.
// Both behaviors are preserved quirks of the flat model.
func parseInspect(output string) *Builder {
	b := &Builder{}
	state := awaitingKey

	// CRLF and mixed endings are normalized up front; behavior for mixed
	// endings is otherwise undefined.
	output = strings.ReplaceAll(output, "\r\n", "\n")

	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !found || key == "" || value == "" {
			state = awaitingKey
			continue
		}
		if state == awaitingKey {
			state = inBlock
		}

		switch key {
		case "Name":
			// The first Name line anywhere names the builder itself,
			// regardless of where in a block it appears.
			if b.Name == "" {
				b.Name = value
			} else {
				b.NodeName = value
			}
		case "Driver":
			b.Driver = value
		case "Endpoint":
			b.NodeEndpoint = value
		case "Status":
			b.NodeStatus = value
		case "Flags":
			b.NodeFlags = value
		case "Platforms":
			b.NodePlatforms = strings.Join(strings.Fields(value), "")
			return b
		}
	}
	return b
}
