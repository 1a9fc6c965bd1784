package shell

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

var repoNamePattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/.]+)(?:\.git)?$`)

// ParseRepoName extracts "owner/repo" from a git remote URL. Both SSH and
// HTTPS GitHub URLs are accepted.
func ParseRepoName(remoteURL string) (string, error) {
	m := repoNamePattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if m == nil {
		return "", goerr.New("cannot parse owner/repo from remote URL",
			goerr.V("url", remoteURL), goerr.T(types.TagConfig))
	}
	return m[1] + "/" + m[2], nil
}

// Git wraps the git subcommands used by the release pipeline.
type Git struct {
	runner interfaces.CommandRunner
}

// NewGit creates a git client on top of the command runner
func NewGit(runner interfaces.CommandRunner) *Git {
	return &Git{runner: runner}
}

// CurrentBranch returns the checked-out branch name
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, "git rev-parse --abbrev-ref HEAD")
	if err != nil {
		return "", goerr.Wrap(err, "failed to get current branch", goerr.T(types.TagGitOp))
	}
	return out, nil
}

// RemoteOriginURL returns the configured origin URL
func (g *Git) RemoteOriginURL(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, "git config --get remote.origin.url")
	if err != nil {
		return "", goerr.Wrap(err, "failed to get remote origin URL", goerr.T(types.TagGitOp))
	}
	return out, nil
}

// Fetch fetches a branch from the named remote
func (g *Git) Fetch(ctx context.Context, remote, branch string) error {
	cmd := fmt.Sprintf("git fetch %s %s", remote, branch)
	if _, err := g.runner.RunMutation(ctx, cmd, ""); err != nil {
		return goerr.Wrap(err, "failed to fetch branch",
			goerr.V("remote", remote), goerr.V("branch", branch), goerr.T(types.TagGitOp))
	}
	return nil
}

// Checkout switches to a branch, creating it when create is true
func (g *Git) Checkout(ctx context.Context, branch string, create bool) error {
	cmd := "git checkout " + branch
	if create {
		cmd = "git checkout -b " + branch
	}
	if _, err := g.runner.RunMutation(ctx, cmd, ""); err != nil {
		return goerr.Wrap(err, "failed to checkout branch",
			goerr.V("branch", branch), goerr.T(types.TagGitOp))
	}
	return nil
}

// Push pushes a branch to origin. The wrapped error keeps the git stderr so
// callers can recognize permission denials.
func (g *Git) Push(ctx context.Context, branch string) error {
	cmd := fmt.Sprintf("git push --set-upstream origin %s", branch)
	if _, err := g.runner.RunMutation(ctx, cmd, ""); err != nil {
		return goerr.Wrap(err, "failed to push branch",
			goerr.V("branch", branch), goerr.T(types.TagGitOp))
	}
	return nil
}

// DiffNameOnly returns the file paths changed since base (base...HEAD)
func (g *Git) DiffNameOnly(ctx context.Context, base string) ([]string, error) {
	out, err := g.runner.Run(ctx, fmt.Sprintf("git diff --name-only %s...HEAD", base))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to diff against base",
			goerr.V("base", base), goerr.T(types.TagGitOp))
	}
	return splitLines(out), nil
}

// Log returns commit subject lines for a path, newest first
func (g *Git) Log(ctx context.Context, path, sinceTag string) ([]string, error) {
	rangeSpec := "HEAD"
	if sinceTag != "" {
		rangeSpec = sinceTag + "..HEAD"
	}
	cmd := fmt.Sprintf("git log --pretty=format:%%s %s -- %s", rangeSpec, path)
	out, err := g.runner.Run(ctx, cmd)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read git log",
			goerr.V("path", path), goerr.V("range", rangeSpec), goerr.T(types.TagGitOp))
	}
	return splitLines(out), nil
}

// LatestTag returns the most recent tag matching the prefix, "" when none
func (g *Git) LatestTag(ctx context.Context, prefix string) (string, error) {
	cmd := fmt.Sprintf("git tag --list %q --sort=-v:refname", prefix+"*")
	out, err := g.runner.Run(ctx, cmd)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list tags",
			goerr.V("prefix", prefix), goerr.T(types.TagGitOp))
	}
	lines := splitLines(out)
	if len(lines) == 0 {
		return "", nil
	}
	return lines[0], nil
}

// Add stages the given paths
func (g *Git) Add(ctx context.Context, paths ...string) error {
	cmd := "git add " + strings.Join(paths, " ")
	if _, err := g.runner.RunMutation(ctx, cmd, ""); err != nil {
		return goerr.Wrap(err, "failed to stage paths",
			goerr.V("paths", paths), goerr.T(types.TagGitOp))
	}
	return nil
}

// Commit records a commit. An empty author keeps the repository default.
func (g *Git) Commit(ctx context.Context, message, author string) error {
	cmd := fmt.Sprintf("git commit -m %q", message)
	if author != "" {
		cmd = fmt.Sprintf("git commit -m %q --author=%q", message, author)
	}
	if _, err := g.runner.RunMutation(ctx, cmd, ""); err != nil {
		return goerr.Wrap(err, "failed to commit",
			goerr.V("message", message), goerr.T(types.TagGitOp))
	}
	return nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
