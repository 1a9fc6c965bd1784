package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// Release holds the shared release pipeline configuration.
type Release struct {
	SourceBranch  string
	ReleaseEnv    string
	RootPath      string
	RepoName      string
	AuthorName    string
	CurrentBranch string

	PackagesDirectories []string
	ChangePackagesLabel string
	ChangeLabels        []string
	Workspace           string
	PublishPath         string
	SkipEmptyCheck      bool

	BranchName      string
	BatchBranchName string
	PRTitle         string
	PRBody          string

	AutoMerge     bool
	AutoMergeType string

	LabelName        string
	LabelDescription string
	LabelColor       string

	DryRunCreatePR      bool
	PlaceholderPRNumber string

	PublishCommand string
}

// Flags returns CLI flags for the release configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-branch",
			Usage:       "Branch the release diff is computed against",
			Destination: &c.SourceBranch,
			Sources:     cli.EnvVars("DROVER_SOURCE_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "release-env",
			Usage:       "Release environment label",
			Destination: &c.ReleaseEnv,
			Sources:     cli.EnvVars("DROVER_RELEASE_ENV"),
		},
		&cli.StringFlag{
			Name:        "root-path",
			Usage:       "Repository root (defaults to the working directory)",
			Destination: &c.RootPath,
			Sources:     cli.EnvVars("DROVER_ROOT_PATH"),
		},
		&cli.StringFlag{
			Name:        "repo-name",
			Usage:       "Repository as owner/repo (detected from the origin URL when empty)",
			Destination: &c.RepoName,
			Sources:     cli.EnvVars("DROVER_REPO_NAME"),
		},
		&cli.StringFlag{
			Name:        "author-name",
			Usage:       "Commit author for release commits",
			Destination: &c.AuthorName,
			Sources:     cli.EnvVars("DROVER_AUTHOR_NAME"),
		},
		&cli.StringFlag{
			Name:        "current-branch",
			Usage:       "Branch the release branch is cut from (detected when empty)",
			Destination: &c.CurrentBranch,
			Sources:     cli.EnvVars("DROVER_CURRENT_BRANCH"),
		},
		&cli.StringSliceFlag{
			Name:        "packages-dir",
			Usage:       "Candidate workspace directory (repeatable)",
			Destination: &c.PackagesDirectories,
			Sources:     cli.EnvVars("DROVER_PACKAGES_DIRS"),
		},
		&cli.StringFlag{
			Name:        "change-packages-label",
			Usage:       "Template deriving a change label from a package path",
			Destination: &c.ChangePackagesLabel,
			Sources:     cli.EnvVars("DROVER_CHANGE_PACKAGES_LABEL"),
		},
		&cli.StringSliceFlag{
			Name:        "change-label",
			Usage:       "Externally supplied change label (repeatable, e.g. from CI)",
			Destination: &c.ChangeLabels,
			Sources:     cli.EnvVars("DROVER_CHANGE_LABELS"),
		},
		&cli.StringFlag{
			Name:        "workspace",
			Usage:       "Pin the run to a single workspace path, disabling change detection",
			Destination: &c.Workspace,
			Sources:     cli.EnvVars("DROVER_WORKSPACE"),
		},
		&cli.StringFlag{
			Name:        "publish-path",
			Usage:       "Narrow the run to the workspace at this root",
			Destination: &c.PublishPath,
			Sources:     cli.EnvVars("DROVER_PUBLISH_PATH"),
		},
		&cli.BoolFlag{
			Name:        "skip-empty-check",
			Usage:       "Allow a run with zero changed workspaces",
			Destination: &c.SkipEmptyCheck,
			Sources:     cli.EnvVars("DROVER_SKIP_EMPTY_CHECK"),
		},
		&cli.StringFlag{
			Name:        "branch-name",
			Usage:       "Release branch template for a single workspace",
			Destination: &c.BranchName,
			Sources:     cli.EnvVars("DROVER_BRANCH_NAME"),
		},
		&cli.StringFlag{
			Name:        "batch-branch-name",
			Usage:       "Release branch template for a batch release",
			Destination: &c.BatchBranchName,
			Sources:     cli.EnvVars("DROVER_BATCH_BRANCH_NAME"),
		},
		&cli.StringFlag{
			Name:        "pr-title",
			Usage:       "Pull request title template",
			Destination: &c.PRTitle,
			Sources:     cli.EnvVars("DROVER_PR_TITLE"),
		},
		&cli.StringFlag{
			Name:        "pr-body",
			Usage:       "Per-workspace pull request body template",
			Destination: &c.PRBody,
			Sources:     cli.EnvVars("DROVER_PR_BODY"),
		},
		&cli.BoolFlag{
			Name:        "auto-merge",
			Usage:       "Merge the release pull request automatically",
			Destination: &c.AutoMerge,
			Sources:     cli.EnvVars("DROVER_AUTO_MERGE"),
		},
		&cli.StringFlag{
			Name:        "auto-merge-type",
			Usage:       "Merge method (squash, merge, rebase)",
			Destination: &c.AutoMergeType,
			Sources:     cli.EnvVars("DROVER_AUTO_MERGE_TYPE"),
		},
		&cli.StringFlag{
			Name:        "label-name",
			Usage:       "Release label name",
			Value:       "release",
			Destination: &c.LabelName,
			Sources:     cli.EnvVars("DROVER_LABEL_NAME"),
		},
		&cli.StringFlag{
			Name:        "label-description",
			Usage:       "Release label description",
			Value:       "Release pull request",
			Destination: &c.LabelDescription,
			Sources:     cli.EnvVars("DROVER_LABEL_DESCRIPTION"),
		},
		&cli.StringFlag{
			Name:        "label-color",
			Usage:       "Release label color",
			Value:       "0e8a16",
			Destination: &c.LabelColor,
			Sources:     cli.EnvVars("DROVER_LABEL_COLOR"),
		},
		&cli.BoolFlag{
			Name:        "dry-run-create-pr",
			Usage:       "Skip PR creation only, returning the placeholder number",
			Destination: &c.DryRunCreatePR,
			Sources:     cli.EnvVars("DROVER_DRY_RUN_CREATE_PR"),
		},
		&cli.StringFlag{
			Name:        "placeholder-pr-number",
			Usage:       "PR number returned by dry-run PR creation",
			Destination: &c.PlaceholderPRNumber,
			Sources:     cli.EnvVars("DROVER_PLACEHOLDER_PR_NUMBER"),
		},
		&cli.StringFlag{
			Name:        "publish-command",
			Usage:       "Publish command template ({{root}}, {{path}}, {{name}}, {{version}})",
			Destination: &c.PublishCommand,
			Sources:     cli.EnvVars("DROVER_PUBLISH_COMMAND"),
		},
	}
}

// SharedOptions builds the configuration patch for the release context,
// applying the documented environment overrides: FE_RELEASE_BRANCH over
// FE_RELEASE_SOURCE_BRANCH for the source branch, FE_RELEASE_ENV over
// NODE_ENV for the release environment.
func (c *Release) SharedOptions(getenv func(string) string) model.SharedOptions {
	sourceBranch := c.SourceBranch
	if v := getenv(types.EnvReleaseBranch); v != "" {
		sourceBranch = v
	} else if v := getenv(types.EnvSourceBranch); v != "" {
		sourceBranch = v
	}

	releaseEnv := c.ReleaseEnv
	if v := getenv(types.EnvReleaseEnvironment); v != "" {
		releaseEnv = v
	} else if v := getenv(types.EnvNodeEnv); v != "" {
		releaseEnv = v
	}

	return model.SharedOptions{
		SourceBranch:        sourceBranch,
		ReleaseEnv:          releaseEnv,
		RootPath:            c.RootPath,
		RepoName:            c.RepoName,
		AuthorName:          c.AuthorName,
		CurrentBranch:       c.CurrentBranch,
		PackagesDirectories: c.PackagesDirectories,
		ChangePackagesLabel: c.ChangePackagesLabel,
		ChangeLabels:        c.ChangeLabels,
		Workspace:           c.Workspace,
		PublishPath:         c.PublishPath,
		SkipEmptyCheck:      c.SkipEmptyCheck,
		BranchName:          c.BranchName,
		BatchBranchName:     c.BatchBranchName,
		PRTitle:             c.PRTitle,
		PRBody:              c.PRBody,
		AutoMergeReleasePR:  c.AutoMerge,
		AutoMergeType:       c.AutoMergeType,
		Label: model.Label{
			Name:        c.LabelName,
			Description: c.LabelDescription,
			Color:       c.LabelColor,
		},
	}
}
