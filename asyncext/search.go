package asyncext

import (
	"context"
	"strings"
	"time"

	"github.com/fluxkit/fluxkit/asyncthunk"
)

// SearchDebounce is the fixed debounce window spec.md §4.10 mandates for
// search thunks.
const SearchDebounce = 300 * time.Millisecond

// Searcher runs the actual lookup once the debounce window has elapsed.
type Searcher[Result any] func(ctx context.Context, query string) (Result, error)

// CreateSearch builds an AsyncThunk that debounces 300ms inside the
// payload creator, re-checks the context after waiting (so a newer
// keystroke's Abort short-circuits a stale search before it runs), and
// skips dispatching entirely for a blank (post-trim) query.
func CreateSearch[Result any](typePrefix string, search Searcher[Result], opts ...asyncthunk.Option[string]) *asyncthunk.AsyncThunk[string, Result] {
	allOpts := append([]asyncthunk.Option[string]{
		asyncthunk.WithCondition(func(query string, _ func() any) bool {
			return strings.TrimSpace(query) != ""
		}),
	}, opts...)

	return asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, query string, api asyncthunk.ThunkAPI) (Result, error) {
		var zero Result
		timer := time.NewTimer(SearchDebounce)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return search(ctx, query)
	}, allOpts...)
}
