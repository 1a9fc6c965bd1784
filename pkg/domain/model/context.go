package model

import (
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// SharedOptions is the configuration shared by every pipeline stage. Values
// are layered: command-line overrides > environment > defaults, applied
// through Merge.
type SharedOptions struct {
	SourceBranch  string // Branch the release diff is computed against
	ReleaseEnv    string // Release environment label (e.g. "production")
	RootPath      string // Absolute repository root
	RepoName      string // "owner/repo"
	AuthorName    string // Commit author for release commits
	CurrentBranch string // Branch the release branch is cut from

	PackagesDirectories []string // Candidate workspace paths
	ChangePackagesLabel string   // Label template, e.g. "changes:{{path}}"
	ChangeLabels        []string // Externally supplied change labels (e.g. from CI)
	Workspace           string   // Single-workspace override path
	PublishPath         string   // Narrow the run to the workspace at this root
	SkipEmptyCheck      bool     // Allow a run with zero changed workspaces

	BranchName      string // Release branch template, single workspace
	BatchBranchName string // Release branch template, batch
	PRTitle         string // PR title template
	PRBody          string // Per-workspace PR body template for batch releases

	AutoMergeReleasePR bool   // Merge the release PR automatically
	AutoMergeType      string // Merge method passed to the gateway
	Label              Label  // Release label attached to the PR

	VersionSeparator    string // Between name and version in release names
	WorkspaceSeparator  string // Between workspaces in batch release names
	MaxInlineWorkspaces int    // Workspaces named inline in a batch branch name
}

// DefaultSharedOptions returns the baseline configuration every run starts
// from before environment and flag overrides are merged in.
func DefaultSharedOptions() SharedOptions {
	return SharedOptions{
		SourceBranch:        "main",
		ChangePackagesLabel: "changes:{{path}}",
		BranchName:          "release-{{tagName}}",
		BatchBranchName:     "batch-{{releaseName}}-{{length}}-packages",
		PRTitle:             "[Release] {{pkgName}} {{tagName}}",
		PRBody:              "## {{name}}@{{version}}\n\n{{changelog}}\n",
		AutoMergeType:       "squash",
		VersionSeparator:    "@",
		WorkspaceSeparator:  "_",
		MaxInlineWorkspaces: 3,
	}
}

// Merge overlays non-zero fields of patch onto o and returns the result.
// Last writer wins per key; zero values in patch leave o untouched, so bool
// options can only be switched on by a later layer, not off.
func (o SharedOptions) Merge(patch SharedOptions) SharedOptions {
	merged := o
	if patch.SourceBranch != "" {
		merged.SourceBranch = patch.SourceBranch
	}
	if patch.ReleaseEnv != "" {
		merged.ReleaseEnv = patch.ReleaseEnv
	}
	if patch.RootPath != "" {
		merged.RootPath = patch.RootPath
	}
	if patch.RepoName != "" {
		merged.RepoName = patch.RepoName
	}
	if patch.AuthorName != "" {
		merged.AuthorName = patch.AuthorName
	}
	if patch.CurrentBranch != "" {
		merged.CurrentBranch = patch.CurrentBranch
	}
	if len(patch.PackagesDirectories) > 0 {
		merged.PackagesDirectories = patch.PackagesDirectories
	}
	if patch.ChangePackagesLabel != "" {
		merged.ChangePackagesLabel = patch.ChangePackagesLabel
	}
	if len(patch.ChangeLabels) > 0 {
		merged.ChangeLabels = patch.ChangeLabels
	}
	if patch.Workspace != "" {
		merged.Workspace = patch.Workspace
	}
	if patch.PublishPath != "" {
		merged.PublishPath = patch.PublishPath
	}
	if patch.SkipEmptyCheck {
		merged.SkipEmptyCheck = true
	}
	if patch.BranchName != "" {
		merged.BranchName = patch.BranchName
	}
	if patch.BatchBranchName != "" {
		merged.BatchBranchName = patch.BatchBranchName
	}
	if patch.PRTitle != "" {
		merged.PRTitle = patch.PRTitle
	}
	if patch.PRBody != "" {
		merged.PRBody = patch.PRBody
	}
	if patch.AutoMergeReleasePR {
		merged.AutoMergeReleasePR = true
	}
	if patch.AutoMergeType != "" {
		merged.AutoMergeType = patch.AutoMergeType
	}
	if patch.Label.Name != "" {
		merged.Label.Name = patch.Label.Name
	}
	if patch.Label.Description != "" {
		merged.Label.Description = patch.Label.Description
	}
	if patch.Label.Color != "" {
		merged.Label.Color = patch.Label.Color
	}
	if patch.VersionSeparator != "" {
		merged.VersionSeparator = patch.VersionSeparator
	}
	if patch.WorkspaceSeparator != "" {
		merged.WorkspaceSeparator = patch.WorkspaceSeparator
	}
	if patch.MaxInlineWorkspaces > 0 {
		merged.MaxInlineWorkspaces = patch.MaxInlineWorkspaces
	}
	return merged
}

// TemplateContext exposes the shared options to the placeholder engine.
func (o SharedOptions) TemplateContext() map[string]any {
	return map[string]any{
		"sourceBranch":  o.SourceBranch,
		"releaseEnv":    o.ReleaseEnv,
		"rootPath":      o.RootPath,
		"repoName":      o.RepoName,
		"authorName":    o.AuthorName,
		"currentBranch": o.CurrentBranch,
	}
}

// PluginConfig holds the per-plugin configuration entry of a release context.
type PluginConfig struct {
	SkipAll    bool          // Skip every lifecycle phase
	SkipPhases []types.Phase // Skip only the listed phases
	Options    map[string]any
}

// Skips reports whether the given lifecycle phase is disabled for the plugin.
func (c PluginConfig) Skips(phase types.Phase) bool {
	if c.SkipAll {
		return true
	}
	for _, p := range c.SkipPhases {
		if p == phase {
			return true
		}
	}
	return false
}

// Option returns a plugin-specific option value by key.
func (c PluginConfig) Option(key string) (any, bool) {
	v, ok := c.Options[key]
	return v, ok
}

// ReleaseContext is the shared mutable state of one release run. It is
// created once per invocation and threaded through every plugin; stages run
// sequentially so no locking is needed.
type ReleaseContext struct {
	DryRun  bool
	Verbose bool
	Env     map[string]string
	Shared  SharedOptions

	// Workspaces is nil until the workspace resolver has run. After that it
	// is non-empty or the run has already aborted.
	Workspaces []*Workspace

	plugins map[string]PluginConfig
}

// NewReleaseContext creates a release context with default shared options.
func NewReleaseContext() *ReleaseContext {
	return &ReleaseContext{
		Env:     map[string]string{},
		Shared:  DefaultSharedOptions(),
		plugins: map[string]PluginConfig{},
	}
}

// SetShared merges the patch into the shared options.
func (rc *ReleaseContext) SetShared(patch SharedOptions) {
	rc.Shared = rc.Shared.Merge(patch)
}

// SetWorkspaces replaces the working set of workspaces.
func (rc *ReleaseContext) SetWorkspaces(workspaces []*Workspace) {
	rc.Workspaces = workspaces
}

// PluginConfig returns the configuration entry for the named plugin.
func (rc *ReleaseContext) PluginConfig(name string) PluginConfig {
	return rc.plugins[name]
}

// SetPluginConfig stores the configuration entry for the named plugin.
func (rc *ReleaseContext) SetPluginConfig(name string, cfg PluginConfig) {
	if rc.plugins == nil {
		rc.plugins = map[string]PluginConfig{}
	}
	rc.plugins[name] = cfg
}
