// Package async provides the concurrency helpers used for per-workspace
// fan-out. All other pipeline execution is strictly sequential.
package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Map runs fn for every item concurrently and returns the results in input
// order. Panics in fn are recovered, logged with their stack, and reported as
// errors. When one or more calls fail, the first error by input position is
// returned together with the partial results.
func Map[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger := ctxlog.From(ctx)
					logger.Error("panic in async map",
						"recover", r,
						"stack", string(debug.Stack()))
					errs[i] = goerr.New("panic in async map", goerr.V("recover", r))
				}
			}()

			result, err := fn(ctx, item)
			if err != nil {
				errs[i] = goerr.Wrap(err, "async map item failed", goerr.V("index", i))
				return
			}
			results[i] = result
		}(i, item)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
