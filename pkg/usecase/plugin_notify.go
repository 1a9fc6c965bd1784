package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// PluginNameNotify identifies the notification stage
const PluginNameNotify = "notify"

// NotifyPlugin posts a release summary to the configured notifier. It is
// disabled entirely when no notifier is configured, and its own failures are
// logged but never fail the run.
type NotifyPlugin struct {
	BasePlugin
	notifier interfaces.Notifier
}

// NewNotifyPlugin creates the notification stage. notifier may be nil, which
// disables every phase.
func NewNotifyPlugin(notifier interfaces.Notifier) *NotifyPlugin {
	return &NotifyPlugin{
		BasePlugin: NewBasePlugin(PluginNameNotify),
		notifier:   notifier,
	}
}

// Enabled disables the plugin without a notifier
func (p *NotifyPlugin) Enabled(rc *model.ReleaseContext, phase types.Phase) bool {
	if p.notifier == nil {
		return false
	}
	return p.BasePlugin.Enabled(rc, phase)
}

// OnSuccess posts the released workspaces.
func (p *NotifyPlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	var tags []string
	for _, ws := range rc.Workspaces {
		tags = append(tags, ws.Name+"@"+ws.Version)
	}

	text := fmt.Sprintf(":rocket: release prepared for %s: %s",
		rc.Shared.RepoName, strings.Join(tags, ", "))
	if rc.DryRun {
		ctxlog.From(ctx).Info("[dry-run] would post notification", "text", text)
		return nil
	}

	if err := p.notifier.Post(ctx, text); err != nil {
		ctxlog.From(ctx).Warn("failed to post release notification", "error", err)
	}
	return nil
}

// OnError posts the failure summary.
func (p *NotifyPlugin) OnError(ctx context.Context, rc *model.ReleaseContext, cause error) error {
	text := fmt.Sprintf(":warning: release failed for %s: %v", rc.Shared.RepoName, cause)
	if rc.DryRun {
		ctxlog.From(ctx).Info("[dry-run] would post notification", "text", text)
		return nil
	}
	if err := p.notifier.Post(ctx, text); err != nil {
		ctxlog.From(ctx).Warn("failed to post failure notification", "error", err)
	}
	return nil
}
