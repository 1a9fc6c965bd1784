package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/utils/tmpl"
)

// PluginNamePublish identifies the publish stage
const PluginNamePublish = "publish"

// DefaultPublishCommand publishes one workspace via npm.
const DefaultPublishCommand = "npm publish {{root}}"

// PublishPlugin runs the package-manager publish command for every
// workspace. Publishing is sequential: registry uploads are not commutative
// with the retry semantics we get from re-running the pipeline.
type PublishPlugin struct {
	BasePlugin
	runner  interfaces.CommandRunner
	command string
}

// PublishOption configures the publish stage
type PublishOption func(*PublishPlugin)

// WithPublishCommand overrides the publish command template. Tokens:
// {{root}}, {{path}}, {{name}}, {{version}}.
func WithPublishCommand(command string) PublishOption {
	return func(p *PublishPlugin) {
		if command != "" {
			p.command = command
		}
	}
}

// NewPublishPlugin creates the publish stage
func NewPublishPlugin(runner interfaces.CommandRunner, opts ...PublishOption) *PublishPlugin {
	p := &PublishPlugin{
		BasePlugin: NewBasePlugin(PluginNamePublish),
		runner:     runner,
		command:    DefaultPublishCommand,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnBefore verifies the registry credential before any mutation happens.
func (p *PublishPlugin) OnBefore(ctx context.Context, rc *model.ReleaseContext) error {
	if rc.Env[types.EnvNPMToken] == "" {
		return goerr.New("NPM_TOKEN is required in publish mode", goerr.T(types.TagConfig))
	}
	return nil
}

// OnSuccess publishes every workspace in order.
func (p *PublishPlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	for _, ws := range rc.Workspaces {
		command := tmpl.Render(p.command, map[string]any{
			"root":    ws.Root,
			"path":    ws.Path,
			"name":    ws.Name,
			"version": ws.Version,
		})

		err := Step(ctx, "publish "+ws.Name+"@"+ws.Version, func(ctx context.Context) error {
			_, err := p.runner.RunMutation(ctx, command, "")
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
