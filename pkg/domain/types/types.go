package types

// Version is embedded via -ldflags at build time
var Version = "dev"

// Phase identifies one step of the plugin lifecycle
type Phase string

const (
	PhaseOnBefore  Phase = "onBefore"
	PhaseOnExec    Phase = "onExec"
	PhaseOnSuccess Phase = "onSuccess"
	PhaseOnError   Phase = "onError"
)

// Environment variable names recognized by the release pipeline. The FE_*
// names are kept for compatibility with the workflows this tool replaces.
const (
	EnvGitHubToken        = "GITHUB_TOKEN"
	EnvPATToken           = "PAT_TOKEN"
	EnvNPMToken           = "NPM_TOKEN"
	EnvRelease            = "FE_RELEASE"
	EnvReleaseBranch      = "FE_RELEASE_BRANCH"
	EnvSourceBranch       = "FE_RELEASE_SOURCE_BRANCH"
	EnvReleaseEnvironment = "FE_RELEASE_ENV"
	EnvNodeEnv            = "NODE_ENV"
)
