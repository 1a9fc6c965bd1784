package interfaces

import "context"

// Notifier posts a human-readable release notification to an external
// channel. Failures never fail the pipeline.
type Notifier interface {
	Post(ctx context.Context, text string) error
}
