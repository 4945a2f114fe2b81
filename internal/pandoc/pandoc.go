// Package pandoc runs the external Pandoc binary. Every invocation is one
// independent subprocess bounded by a hard timeout.
package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors. A missing binary is a configuration error the operator
// must fix; a timeout is a per-call degradation the caller may recover from.
var (
	ErrNotInstalled = errors.New("pandoc is not installed or not on PATH")
	ErrTimeout      = errors.New("pandoc timed out")
)

// Runner invokes Pandoc. The zero value resolves "pandoc" from PATH with a
// 10 second timeout per call.
type Runner struct {
	Path    string
	Timeout time.Duration
}

func (r *Runner) path() string {
	if r.Path != "" {
		return r.Path
	}
	return "pandoc"
}

func (r *Runner) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 10 * time.Second
}

// Installed reports whether the binary can be resolved.
func (r *Runner) Installed() bool {
	_, err := exec.LookPath(r.path())
	return err == nil
}

// Version returns the first line of `pandoc --version`, or "" if Pandoc is
// missing or unresponsive.
func (r *Runner) Version(ctx context.Context) string {
	out, err := r.Run(ctx, nil, "--version")
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

// Run executes Pandoc with the given stdin and arguments and returns stdout.
func (r *Runner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.path(), args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
			return nil, ErrNotInstalled
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("pandoc: %s", msg)
	}
	return stdout.Bytes(), nil
}

// Convert pipes input through Pandoc between two formats.
func (r *Runner) Convert(ctx context.Context, input []byte, from, to string, extra ...string) ([]byte, error) {
	args := append([]string{"-f", from, "-t", to}, extra...)
	return r.Run(ctx, input, args...)
}
