// Package shell runs the git and package-manager subcommands the pipeline
// needs. In dry-run mode mutating commands are replaced by logged intentions
// with a pre-declared result, while read-only commands still execute so the
// full release plan can be previewed.
package shell

import (
	"context"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Runner executes shell commands through `sh -c`.
type Runner struct {
	dryRun bool
	dir    string
}

// Option configures a Runner
type Option func(*Runner)

// WithDryRun makes RunMutation replay its canned result instead of executing
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithDir sets the working directory for every command
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// New creates a command runner
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a read-only command and returns its trimmed stdout.
func (r *Runner) Run(ctx context.Context, command string) (string, error) {
	return r.exec(ctx, command)
}

// RunMutation executes a state-changing command. In dry-run mode it logs the
// command and returns dryRunResult without executing.
func (r *Runner) RunMutation(ctx context.Context, command string, dryRunResult string) (string, error) {
	if r.dryRun {
		ctxlog.From(ctx).Info("[dry-run] skip command", "command", command, "result", dryRunResult)
		return dryRunResult, nil
	}
	return r.exec(ctx, command)
}

func (r *Runner) exec(ctx context.Context, command string) (string, error) {
	ctxlog.From(ctx).Debug("exec command", "command", command, "dir", r.dir)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = r.dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// command output is folded into the message so callers can match on
		// known failure text (e.g. push permission denials)
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = "command failed"
		}
		return "", goerr.Wrap(err, msg, goerr.V("command", command))
	}

	return strings.TrimSpace(stdout.String()), nil
}
