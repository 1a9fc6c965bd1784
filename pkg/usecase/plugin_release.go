package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/utils/async"
)

// PluginNameGitHubRelease identifies the GitHub release stage
const PluginNameGitHubRelease = "github-release"

// GitHubReleasePlugin creates one tagged GitHub release per workspace. The
// per-workspace calls fan out concurrently; the gateway must tolerate
// concurrent calls for different workspaces.
type GitHubReleasePlugin struct {
	BasePlugin
	gateway interfaces.ReleaseGateway

	onlyAfterMerge bool
}

// ReleasePluginOption configures the GitHub release stage
type ReleasePluginOption func(*GitHubReleasePlugin)

// WithOnlyAfterMerge skips release creation unless the release PR was
// auto-merged in the same run; without a merged PR there is no tag to
// release from
func WithOnlyAfterMerge(enabled bool) ReleasePluginOption {
	return func(p *GitHubReleasePlugin) {
		p.onlyAfterMerge = enabled
	}
}

// NewGitHubReleasePlugin creates the GitHub release stage
func NewGitHubReleasePlugin(gateway interfaces.ReleaseGateway, opts ...ReleasePluginOption) *GitHubReleasePlugin {
	p := &GitHubReleasePlugin{
		BasePlugin: NewBasePlugin(PluginNameGitHubRelease),
		gateway:    gateway,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnSuccess creates the per-workspace releases.
func (p *GitHubReleasePlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	logger := ctxlog.From(ctx)

	if p.onlyAfterMerge && !rc.Shared.AutoMergeReleasePR {
		logger.Info("skipping GitHub releases: the release pull request was not merged in this run")
		return nil
	}

	return Step(ctx, "create GitHub releases", func(ctx context.Context) error {
		_, err := async.Map(ctx, rc.Workspaces, func(ctx context.Context, ws *model.Workspace) (struct{}, error) {
			if rc.DryRun {
				logger.Info("[dry-run] would create GitHub release",
					"workspace", ws.Name, "tag", ws.TagName)
				return struct{}{}, nil
			}
			return struct{}{}, p.gateway.CreateRelease(ctx, ws)
		})
		return err
	})
}
