// Package execx wraps external process execution behind a small capability
// interface so callers that parse tool output can be tested without spawning
// real processes.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Options controls how a single invocation is run.
type Options struct {
	// IgnoreReturnCode suppresses the error normally returned for a
	// non-zero exit; the caller inspects Result.ExitCode instead.
	IgnoreReturnCode bool

	// Silent keeps the child's output off the inherited stdio; output is
	// still captured in the Result.
	Silent bool
}

// Result is the captured outcome of one invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a command and captures its output. Implementations must
// distinguish the diagnostic stream from stdout and report the exit code
// separately from stream content.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts Options) (Result, error)
}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &osRunner{}
}

type osRunner struct{}

func (r *osRunner) Run(ctx context.Context, name string, args []string, opts Options) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	if opts.Silent {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if opts.IgnoreReturnCode {
			return res, nil
		}
		return res, fmt.Errorf("%s exited with code %d: %s", name, res.ExitCode, strings.TrimSpace(res.Stderr))
	default:
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}
}
