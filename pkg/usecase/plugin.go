package usecase

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// BasePlugin supplies the default lifecycle behavior: every hook is a no-op
// and Enabled honors the per-plugin skip configuration (skip all phases or a
// single named phase). Concrete plugins embed it and override what they need.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates the embeddable default plugin
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name identifies the plugin
func (p *BasePlugin) Name() string {
	return p.name
}

// Enabled honors the skip configuration of the release context
func (p *BasePlugin) Enabled(rc *model.ReleaseContext, phase types.Phase) bool {
	return !rc.PluginConfig(p.name).Skips(phase)
}

// OnBefore is a no-op by default
func (p *BasePlugin) OnBefore(ctx context.Context, rc *model.ReleaseContext) error {
	return nil
}

// OnExec is a no-op by default
func (p *BasePlugin) OnExec(ctx context.Context, rc *model.ReleaseContext) error {
	return nil
}

// OnSuccess is a no-op by default
func (p *BasePlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	return nil
}

// OnError is a no-op by default
func (p *BasePlugin) OnError(ctx context.Context, rc *model.ReleaseContext, cause error) error {
	return nil
}
