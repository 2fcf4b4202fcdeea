package asyncext

import (
	"context"

	"github.com/fluxkit/fluxkit/asyncthunk"
	"github.com/fluxkit/fluxkit/store"
)

// OptimisticResult is what an optimistic thunk resolves to: the real
// Result once the work succeeds, with IsOptimistic false. When the work
// fails the thunk rejects with the work's error (after dispatching
// Revert), so no fulfilled action carries IsOptimistic true.
type OptimisticResult[Result any] struct {
	Data         Result
	IsOptimistic bool
}

// OptimisticConfig wires the three pieces spec.md §4.10 requires: a
// synchronous projection dispatched before the async work starts, the
// work itself, and an optional revert. Revert is a symmetric
// store.Thunk rather than a direct state mutation — the same
// dispatch-a-thunk shape as the optimistic Apply action — since nothing
// in this package reaches into reducer internals from the outside.
type OptimisticConfig[Arg, Result any] struct {
	Apply  func(arg Arg, getState func() any) (original any, apply store.Action)
	Work   func(ctx context.Context, arg Arg, api asyncthunk.ThunkAPI) (Result, error)
	Revert func(original any, arg Arg) store.Thunk
}

// CreateOptimistic builds an AsyncThunk that dispatches cfg.Apply's
// action immediately, runs cfg.Work, and on failure dispatches
// cfg.Revert(original, arg) if provided.
func CreateOptimistic[Arg, Result any](typePrefix string, cfg OptimisticConfig[Arg, Result], opts ...asyncthunk.Option[Arg]) *asyncthunk.AsyncThunk[Arg, OptimisticResult[Result]] {
	return asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, arg Arg, api asyncthunk.ThunkAPI) (OptimisticResult[Result], error) {
		var original any
		if cfg.Apply != nil {
			orig, action := cfg.Apply(arg, api.GetState)
			original = orig
			api.Dispatch(action)
		}

		result, err := cfg.Work(ctx, arg, api)
		if err != nil {
			if cfg.Revert != nil {
				api.Dispatch(cfg.Revert(original, arg))
			}
			return OptimisticResult[Result]{IsOptimistic: true}, err
		}
		return OptimisticResult[Result]{Data: result}, nil
	}, opts...)
}
