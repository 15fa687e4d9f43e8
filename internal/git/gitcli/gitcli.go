// Package gitcli runs the git executable against working copies.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes git commands, inside dir when it is set.
type Runner struct {
	dir    string
	config []string
}

type Option func(*Runner)

// WithConfig passes a "-c key=value" override to every command.
func WithConfig(key, value string) Option {
	return func(r *Runner) {
		r.config = append(r.config, key+"="+value)
	}
}

func New(dir string, opts ...Option) *Runner {
	r := &Runner{dir: dir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Dir() string {
	return r.dir
}

// Run executes git with args and returns its stdout. label prefixes errors.
func (r *Runner) Run(ctx context.Context, args []string, label string) (string, error) {
	return r.run(ctx, args, false, label)
}

// RunAllowExit1 is Run but treats exit status 1 with empty stderr as
// success, which is how several porcelain commands signal "something found".
func (r *Runner) RunAllowExit1(ctx context.Context, args []string, label string) (string, error) {
	return r.run(ctx, args, true, label)
}

func (r *Runner) run(ctx context.Context, args []string, allowExit1 bool, label string) (string, error) {
	if err := EnsureMinGitVersion(); err != nil {
		return "", err
	}
	cmdArgs := make([]string, 0, len(args)+2*len(r.config)+2)
	if r.dir != "" {
		cmdArgs = append(cmdArgs, "-C", r.dir)
	}
	for _, kv := range r.config {
		cmdArgs = append(cmdArgs, "-c", kv)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			return stdout.String(), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", label, ctxErr)
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%s: %v: %s", label, err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return stdout.String(), nil
}
