package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// Plugin is one pipeline stage. The executor drives every registered plugin
// through onBefore and onExec, then either onSuccess for all of them or
// onError for all of them. Hooks a stage does not need are no-ops gated off
// via Enabled.
type Plugin interface {
	// Name identifies the plugin. Registering two plugins with the same name
	// in one executor is rejected.
	Name() string

	// Enabled reports whether the phase should run for this plugin
	Enabled(rc *model.ReleaseContext, phase types.Phase) bool

	// OnBefore validates input and prepares state before any main work runs
	OnBefore(ctx context.Context, rc *model.ReleaseContext) error

	// OnExec performs the plugin's main work
	OnExec(ctx context.Context, rc *model.ReleaseContext) error

	// OnSuccess runs after every plugin's OnExec succeeded
	OnSuccess(ctx context.Context, rc *model.ReleaseContext) error

	// OnError reports the run's failure. Best-effort: returned errors are
	// logged by the executor, never propagated.
	OnError(ctx context.Context, rc *model.ReleaseContext, cause error) error
}
