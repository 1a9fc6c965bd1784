// Package usecase implements the release pipeline: the plugin lifecycle
// executor, workspace resolution, release identifier derivation and the
// idempotent pull-request/branch management protocol.
package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// Pipeline drives an ordered list of stage plugins through the lifecycle
// phases: onBefore and onExec for every plugin in registration order, then
// onSuccess for all of them. When any phase fails, onError is fanned out to
// every plugin best-effort and the original error is returned.
type Pipeline struct {
	rc      *model.ReleaseContext
	plugins []interfaces.Plugin
}

// NewPipeline creates an executor bound to the release context
func NewPipeline(rc *model.ReleaseContext) *Pipeline {
	return &Pipeline{rc: rc}
}

// Register appends a plugin. Registering the same plugin name twice is a
// configuration error.
func (p *Pipeline) Register(plugin interfaces.Plugin) error {
	for _, existing := range p.plugins {
		if existing.Name() == plugin.Name() {
			return goerr.New("plugin is already registered",
				goerr.V("plugin", plugin.Name()), goerr.T(types.TagConfig))
		}
	}
	p.plugins = append(p.plugins, plugin)
	return nil
}

// Run executes the lifecycle. The returned error is the first failure from
// onBefore, onExec or onSuccess; onError hooks never replace it.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.run(ctx); err != nil {
		p.fanOutError(ctx, err)
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context) error {
	phases := []struct {
		phase types.Phase
		hook  func(interfaces.Plugin) func(context.Context, *model.ReleaseContext) error
	}{
		{types.PhaseOnBefore, func(pl interfaces.Plugin) func(context.Context, *model.ReleaseContext) error {
			return pl.OnBefore
		}},
		{types.PhaseOnExec, func(pl interfaces.Plugin) func(context.Context, *model.ReleaseContext) error {
			return pl.OnExec
		}},
		{types.PhaseOnSuccess, func(pl interfaces.Plugin) func(context.Context, *model.ReleaseContext) error {
			return pl.OnSuccess
		}},
	}

	for _, ph := range phases {
		for _, plugin := range p.plugins {
			if !plugin.Enabled(p.rc, ph.phase) {
				ctxlog.From(ctx).Debug("phase skipped",
					"plugin", plugin.Name(), "phase", string(ph.phase))
				continue
			}
			if err := ph.hook(plugin)(ctx, p.rc); err != nil {
				return goerr.Wrap(err, "plugin phase failed",
					goerr.V("plugin", plugin.Name()), goerr.V("phase", string(ph.phase)))
			}
		}
	}
	return nil
}

// fanOutError reports the failure to every plugin. Errors raised by the
// hooks themselves are logged and discarded.
func (p *Pipeline) fanOutError(ctx context.Context, cause error) {
	logger := ctxlog.From(ctx)
	for _, plugin := range p.plugins {
		if !plugin.Enabled(p.rc, types.PhaseOnError) {
			continue
		}
		if err := plugin.OnError(ctx, p.rc, cause); err != nil {
			logger.Error("onError hook failed",
				"plugin", plugin.Name(), "error", err)
		}
	}
}

// Step runs one user-visible unit of work with start/finish logging. It is
// the granularity at which dry-run short-circuits individual mutations.
func Step(ctx context.Context, label string, task func(ctx context.Context) error) error {
	logger := ctxlog.From(ctx)
	logger.Info("step start", "step", label)

	if err := task(ctx); err != nil {
		logger.Error("step failed", "step", label, "error", err)
		return goerr.Wrap(err, "step failed", goerr.V("step", label))
	}

	logger.Info("step done", "step", label)
	return nil
}
