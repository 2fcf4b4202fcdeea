// Package asyncext builds the async thunk lifecycle from package
// asyncthunk into the higher-order patterns spec.md §4.10 names:
// pagination, debounced search, optimistic updates, polling, batching,
// dependent chains, and retry-with-fallback.
package asyncext

import (
	"context"

	"github.com/fluxkit/fluxkit/asyncthunk"
)

// PageArg is the argument a paginated thunk takes.
type PageArg struct {
	Page     int
	PageSize int
	Append   bool
}

// PageResult is the uniform shape a paginated fetch resolves to.
type PageResult[T any] struct {
	Items       []T
	TotalCount  int
	PageSize    int
	CurrentPage int
	HasMore     bool
}

// Fetch is the caller-supplied page loader: given the page/pageSize it
// returns the items for that page and the total item count across all
// pages.
type Fetch[T any] func(ctx context.Context, arg PageArg) (items []T, totalCount int, err error)

// CreatePaginated builds an AsyncThunk that wraps fetch into the
// {items, totalCount, pageSize, currentPage, hasMore} result shape.
func CreatePaginated[T any](typePrefix string, fetch Fetch[T], opts ...asyncthunk.Option[PageArg]) *asyncthunk.AsyncThunk[PageArg, PageResult[T]] {
	return asyncthunk.CreateAsyncThunk(typePrefix, func(ctx context.Context, arg PageArg, api asyncthunk.ThunkAPI) (PageResult[T], error) {
		items, total, err := fetch(ctx, arg)
		if err != nil {
			return PageResult[T]{}, err
		}
		fetched := arg.Page * arg.PageSize
		return PageResult[T]{
			Items:       items,
			TotalCount:  total,
			PageSize:    arg.PageSize,
			CurrentPage: arg.Page,
			HasMore:     fetched < total,
		}, nil
	}, opts...)
}
