package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/drover/pkg/usecase"
)

// recordPlugin appends "<name>:<phase>" to a shared trace on every hook call
type recordPlugin struct {
	usecase.BasePlugin
	trace  *[]string
	execFn func(ctx context.Context, rc *model.ReleaseContext) error
}

func newRecordPlugin(name string, trace *[]string) *recordPlugin {
	return &recordPlugin{BasePlugin: usecase.NewBasePlugin(name), trace: trace}
}

func (p *recordPlugin) record(phase types.Phase) {
	*p.trace = append(*p.trace, p.Name()+":"+string(phase))
}

func (p *recordPlugin) OnBefore(ctx context.Context, rc *model.ReleaseContext) error {
	p.record(types.PhaseOnBefore)
	return nil
}

func (p *recordPlugin) OnExec(ctx context.Context, rc *model.ReleaseContext) error {
	p.record(types.PhaseOnExec)
	if p.execFn != nil {
		return p.execFn(ctx, rc)
	}
	return nil
}

func (p *recordPlugin) OnSuccess(ctx context.Context, rc *model.ReleaseContext) error {
	p.record(types.PhaseOnSuccess)
	return nil
}

func (p *recordPlugin) OnError(ctx context.Context, rc *model.ReleaseContext, cause error) error {
	p.record(types.PhaseOnError)
	return nil
}

func TestPipelineRun(t *testing.T) {
	ctx := context.Background()

	t.Run("phases run for all plugins in order", func(t *testing.T) {
		var trace []string
		rc := model.NewReleaseContext()
		pipeline := usecase.NewPipeline(rc)
		gt.NoError(t, pipeline.Register(newRecordPlugin("a", &trace)))
		gt.NoError(t, pipeline.Register(newRecordPlugin("b", &trace)))

		gt.NoError(t, pipeline.Run(ctx))
		gt.Value(t, trace).Equal([]string{
			"a:onBefore", "b:onBefore",
			"a:onExec", "b:onExec",
			"a:onSuccess", "b:onSuccess",
		})
	})

	t.Run("failure stops the run and fans out onError", func(t *testing.T) {
		var trace []string
		rc := model.NewReleaseContext()
		pipeline := usecase.NewPipeline(rc)

		failing := newRecordPlugin("b", &trace)
		failing.execFn = func(ctx context.Context, rc *model.ReleaseContext) error {
			return goerr.New("exec blew up")
		}
		gt.NoError(t, pipeline.Register(newRecordPlugin("a", &trace)))
		gt.NoError(t, pipeline.Register(failing))
		gt.NoError(t, pipeline.Register(newRecordPlugin("c", &trace)))

		err := pipeline.Run(ctx)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("exec blew up")

		// No onSuccess anywhere, onError on every plugin
		gt.Value(t, trace).Equal([]string{
			"a:onBefore", "b:onBefore", "c:onBefore",
			"a:onExec", "b:onExec",
			"a:onError", "b:onError", "c:onError",
		})
	})

	t.Run("skip configuration disables phases", func(t *testing.T) {
		var trace []string
		rc := model.NewReleaseContext()
		rc.SetPluginConfig("a", model.PluginConfig{
			SkipPhases: []types.Phase{types.PhaseOnSuccess},
		})
		rc.SetPluginConfig("b", model.PluginConfig{SkipAll: true})

		pipeline := usecase.NewPipeline(rc)
		gt.NoError(t, pipeline.Register(newRecordPlugin("a", &trace)))
		gt.NoError(t, pipeline.Register(newRecordPlugin("b", &trace)))

		gt.NoError(t, pipeline.Run(ctx))
		gt.Value(t, trace).Equal([]string{"a:onBefore", "a:onExec"})
	})
}

func TestPipelineRegister(t *testing.T) {
	var trace []string
	pipeline := usecase.NewPipeline(model.NewReleaseContext())

	gt.NoError(t, pipeline.Register(newRecordPlugin("a", &trace)))
	err := pipeline.Register(newRecordPlugin("a", &trace))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.TagConfig))
}

func TestStep(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through success", func(t *testing.T) {
		called := false
		gt.NoError(t, usecase.Step(ctx, "noop", func(ctx context.Context) error {
			called = true
			return nil
		}))
		gt.True(t, called)
	})

	t.Run("wraps failures with the step label", func(t *testing.T) {
		err := usecase.Step(ctx, "push branch", func(ctx context.Context) error {
			return goerr.New("denied")
		})
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("denied")
	})
}
