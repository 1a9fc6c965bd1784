package types

import "github.com/m-mizutani/goerr/v2"

// Error classification tags. Remote errors are split by how the caller must
// react: conflicts and not-found cases are recovered locally, everything else
// propagates to the lifecycle executor.
var (
	// TagConfig marks configuration errors: missing token, invalid label
	// fields, empty manifest. Always fatal, raised before any mutation.
	TagConfig = goerr.NewTag("config")

	// TagGitOp marks git subprocess failures (checkout, fetch, push).
	TagGitOp = goerr.NewTag("git")

	// TagRemoteConflict marks HTTP 422 "already exists" responses from the
	// release gateway.
	TagRemoteConflict = goerr.NewTag("remote_conflict")

	// TagRemoteNotFound marks HTTP 404 responses from the release gateway.
	TagRemoteNotFound = goerr.NewTag("remote_not_found")

	// TagRemote marks any other release gateway failure.
	TagRemote = goerr.NewTag("remote")
)
