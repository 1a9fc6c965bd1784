package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

// PluginNameWorkspaces identifies the workspaces stage
const PluginNameWorkspaces = "workspaces"

// WorkspacesPlugin is the first pipeline stage. It resolves the changed
// workspaces up front, derives the release identifiers, and on success
// performs the commit / branch / PR / merge sequence.
type WorkspacesPlugin struct {
	BasePlugin
	resolver *WorkspaceResolver
	manager  *BranchManager
	git      interfaces.GitClient

	params   *model.ReleaseBranchParams
	prNumber string
}

// NewWorkspacesPlugin creates the workspaces stage
func NewWorkspacesPlugin(resolver *WorkspaceResolver, manager *BranchManager, git interfaces.GitClient) *WorkspacesPlugin {
	return &WorkspacesPlugin{
		BasePlugin: NewBasePlugin(PluginNameWorkspaces),
		resolver:   resolver,
		manager:    manager,
		git:        git,
	}
}

// OnBefore resolves the working set. After it returns, rc.Workspaces is
// non-empty or the run has aborted.
func (p *WorkspacesPlugin) OnBefore(ctx context.Context, rc *model.ReleaseContext) error {
	return Step(ctx, "resolve workspaces", func(ctx context.Context) error {
		return p.resolver.Resolve(ctx, rc)
	})
}

// OnExec derives the release identifiers and assigns per-workspace tags.
func (p *WorkspacesPlugin) OnExec(ctx context.Context, rc *model.ReleaseContext) error {
	params, err := GetReleaseBranchParams(rc.Workspaces, rc.Shared)
	if err != nil {
		return err
	}
	p.params = params

	if len(rc.Workspaces) == 1 {
		rc.Workspaces[0].TagName = params.TagName
	} else {
		for _, ws := range rc.Workspaces {
			ws.TagName = ws.VersionedName(rc.Shared.VersionSeparator)
		}
	}

	ctxlog.From(ctx).Info("release identifiers derived",
		"tagName", params.TagName, "releaseBranch", params.ReleaseBranch)
	return nil
}

// OnSuccess commits the release changes, pushes the release branch, opens
// the PR and, when auto-merge is configured, merges and cleans up.
func (p *WorkspacesPlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	logger := ctxlog.From(ctx)

	if err := Step(ctx, "commit release changes", func(ctx context.Context) error {
		return p.commitChanges(ctx, rc)
	}); err != nil {
		return err
	}

	if err := Step(ctx, "create release branch", func(ctx context.Context) error {
		return p.manager.CreateReleaseBranch(ctx, rc, p.params.ReleaseBranch)
	}); err != nil {
		return err
	}

	var label model.Label
	if err := Step(ctx, "ensure release label", func(ctx context.Context) error {
		var err error
		label, err = p.manager.EnsureLabel(ctx, rc)
		return err
	}); err != nil {
		return err
	}

	if err := Step(ctx, "create release pull request", func(ctx context.Context) error {
		pr := &model.PullRequestDescriptor{
			Title:  RenderPRTitle(p.params, rc.Shared),
			Body:   BuildPRBody(rc.Workspaces, rc.Shared),
			Base:   rc.Shared.SourceBranch,
			Head:   p.params.ReleaseBranch,
			Labels: append([]string{label.Name}, rc.Shared.ChangeLabels...),
		}
		number, err := p.manager.CreatePR(ctx, rc, pr)
		if err != nil {
			return err
		}
		p.prNumber = number
		return nil
	}); err != nil {
		return err
	}

	if !rc.Shared.AutoMergeReleasePR {
		logger.Info("auto-merge is disabled, merge the release pull request manually",
			"number", p.prNumber, "branch", p.params.ReleaseBranch)
		return nil
	}

	if err := Step(ctx, "merge release pull request", func(ctx context.Context) error {
		return p.manager.MergePR(ctx, rc, p.prNumber, p.params.ReleaseBranch)
	}); err != nil {
		return err
	}

	return Step(ctx, "clean up release branch", func(ctx context.Context) error {
		return p.manager.CheckedPR(ctx, rc, p.prNumber, p.params.ReleaseBranch)
	})
}

// OnError reports where the release stopped.
func (p *WorkspacesPlugin) OnError(ctx context.Context, rc *model.ReleaseContext, cause error) error {
	logger := ctxlog.From(ctx)
	fields := []any{"error", cause}
	if p.params != nil {
		fields = append(fields, "releaseBranch", p.params.ReleaseBranch, "tagName", p.params.TagName)
	}
	if p.prNumber != "" {
		fields = append(fields, "prNumber", p.prNumber)
	}
	logger.Error("release run failed", fields...)
	return nil
}

// Params returns the identifiers derived in OnExec, nil before that.
func (p *WorkspacesPlugin) Params() *model.ReleaseBranchParams {
	return p.params
}

// PRNumber returns the created PR number, "" before OnSuccess ran.
func (p *WorkspacesPlugin) PRNumber() string {
	return p.prNumber
}

// commitChanges stages and commits the working tree on the current branch.
// The commit travels to the remote only through the release branch push.
func (p *WorkspacesPlugin) commitChanges(ctx context.Context, rc *model.ReleaseContext) error {
	if err := p.git.Add(ctx, "."); err != nil {
		return err
	}

	message := "chore(release): " + p.params.TagName
	if err := p.git.Commit(ctx, message, rc.Shared.AuthorName); err != nil {
		// A clean tree is fine: the release may consist only of already
		// committed changes
		if strings.Contains(err.Error(), "nothing to commit") {
			ctxlog.From(ctx).Warn("working tree is clean, skipping release commit")
			return nil
		}
		return err
	}
	return nil
}
