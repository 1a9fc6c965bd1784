package interfaces

import "context"

// CommandRunner executes a shell command and returns its trimmed stdout.
type CommandRunner interface {
	// Run executes a read-only command. It always executes, even in dry-run.
	Run(ctx context.Context, command string) (string, error)

	// RunMutation executes a state-changing command. In dry-run it logs the
	// intention and returns dryRunResult without executing anything.
	RunMutation(ctx context.Context, command string, dryRunResult string) (string, error)
}

// GitClient wraps the git subcommands the pipeline needs.
type GitClient interface {
	// CurrentBranch returns the checked-out branch name
	CurrentBranch(ctx context.Context) (string, error)

	// RemoteOriginURL returns the configured origin URL
	RemoteOriginURL(ctx context.Context) (string, error)

	// Fetch fetches a branch from the named remote
	Fetch(ctx context.Context, remote, branch string) error

	// Checkout switches to a branch, creating it when create is true
	Checkout(ctx context.Context, branch string, create bool) error

	// Push pushes a branch to origin
	Push(ctx context.Context, branch string) error

	// DiffNameOnly returns the file paths changed since base (base...HEAD)
	DiffNameOnly(ctx context.Context, base string) ([]string, error)

	// Log returns commit subject lines for a path, newest first. A non-empty
	// sinceTag limits the range to sinceTag..HEAD.
	Log(ctx context.Context, path, sinceTag string) ([]string, error)

	// LatestTag returns the most recent tag matching the prefix, or "" when
	// the repository has no matching tag
	LatestTag(ctx context.Context, prefix string) (string, error)

	// Add stages the given paths
	Add(ctx context.Context, paths ...string) error

	// Commit records a commit with the given message and author
	Commit(ctx context.Context, message, author string) error
}
