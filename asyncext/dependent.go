package asyncext

import (
	"context"

	"github.com/fluxkit/fluxkit/asyncthunk"
)

// Prerequisite resolves one dependency a Dependent thunk needs before its
// main work can run. Implementations typically dispatch another
// AsyncThunk's Call and extract its payload, or call a plain API client
// directly — asyncext only needs the resolved value and an error.
type Prerequisite func(ctx context.Context, api asyncthunk.ThunkAPI) (any, error)

// CreateDependent builds an AsyncThunk whose work only runs once every
// prerequisite has resolved; the first prerequisite error short-circuits
// the whole thunk the same way a single rejected promise would in
// Promise.all (spec.md §4.10's "Dependent").
func CreateDependent[Arg, Result any](
	typePrefix string,
	prerequisites func(arg Arg) []Prerequisite,
	work func(ctx context.Context, arg Arg, deps []any, api asyncthunk.ThunkAPI) (Result, error),
	opts ...asyncthunk.Option[Arg],
) *asyncthunk.AsyncThunk[Arg, Result] {
	return asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, arg Arg, api asyncthunk.ThunkAPI) (Result, error) {
		var zero Result
		prereqs := prerequisites(arg)
		deps := make([]any, len(prereqs))
		for i, p := range prereqs {
			value, err := p(ctx, api)
			if err != nil {
				return zero, err
			}
			deps[i] = value
		}
		return work(ctx, arg, deps, api)
	}, opts...)
}
