package query

import (
	"testing"
	"time"

	"github.com/fluxkit/fluxkit/store"
)

type Post struct {
	ID    string
	Title string
}

func newTestAPI(baseQuery BaseQuery) (*API, store.Store) {
	api := CreateAPI(Config{ReducerPath: "api", BaseQuery: baseQuery, KeepUnusedDataFor: 50 * time.Millisecond})
	s := store.CreateStore(api.Reducer, nil, store.ApplyMiddleware(store.ThunkMiddleware(nil)))
	api.Attach(s)
	return api, s
}

func fakeBaseQuery(calls *int, data any, err *QueryError) BaseQuery {
	return func(args any, qapi QueryAPI) QueryResult {
		if calls != nil {
			*calls++
		}
		if err != nil {
			return QueryResult{Error: err}
		}
		return QueryResult{Data: data}
	}
}

func TestQueryInitiateFetchesAndCaches(t *testing.T) {
	calls := 0
	api, s := newTestAPI(fakeBaseQuery(&calls, map[string]any{"id": "1"}, nil))
	posts := DefineQuery[string, Post](api, "getPost", QueryDef[string, Post]{
		Query: func(arg string) any { return arg },
		TransformResponse: func(raw any, arg string) (Post, error) {
			m := raw.(map[string]any)
			return Post{ID: m["id"].(string)}, nil
		},
		ProvidesTags: func(result Post, err error, arg string) []Tag {
			return []Tag{{Type: "Post", ID: result.ID}}
		},
	})

	if _, err := s.Dispatch(posts.Initiate("1", InitiateOptions{})); err != nil {
		t.Fatalf("initiate error: %v", err)
	}
	entry := posts.Select("1")(s.GetState())
	if entry.Status != StatusFulfilled {
		t.Fatalf("status = %v, want fulfilled", entry.Status)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one baseQuery call, got %d", calls)
	}

	// second initiate with an already-fulfilled entry should not refetch
	s.Dispatch(posts.Initiate("1", InitiateOptions{}))
	if calls != 1 {
		t.Fatalf("expected cached fulfilled entry to skip refetch, calls = %d", calls)
	}
}

func TestMutationInvalidatesQueryTags(t *testing.T) {
	calls := 0
	api, s := newTestAPI(fakeBaseQuery(&calls, map[string]any{"id": "1"}, nil))
	getPost := DefineQuery[string, Post](api, "getPost", QueryDef[string, Post]{
		Query: func(arg string) any { return arg },
		TransformResponse: func(raw any, arg string) (Post, error) {
			m := raw.(map[string]any)
			return Post{ID: m["id"].(string)}, nil
		},
		ProvidesTags: func(result Post, err error, arg string) []Tag {
			return []Tag{{Type: "Post", ID: result.ID}}
		},
	})
	updatePost := DefineMutation[Post, Post](api, "updatePost", MutationDef[Post, Post]{
		Query: func(arg Post) any { return arg },
		TransformResponse: func(raw any, arg Post) (Post, error) { return arg, nil },
		InvalidatesTags: func(result Post, err error, arg Post) []Tag {
			return []Tag{{Type: "Post", ID: result.ID}}
		},
	})

	s.Dispatch(getPost.Initiate("1", InitiateOptions{}))
	// keep the entry subscribed so invalidation refetches instead of
	// dropping to uninitialized
	s.Dispatch(store.Action{Type: "api/subscribe", Meta: map[string]any{"cacheKey": "getPost:\"1\""}})

	s.Dispatch(updatePost.Initiate(Post{ID: "1", Title: "new"}, ""))

	entry := getPost.Select("1")(s.GetState())
	if entry.Status != StatusPending {
		t.Fatalf("expected invalidated entry with subscribers to re-enter pending, got %v", entry.Status)
	}
}

func TestQueryErrorSetsRejectedStatus(t *testing.T) {
	api, s := newTestAPI(fakeBaseQuery(nil, nil, &QueryError{Kind: KindFetchError, Err: "network down"}))
	endpoint := DefineQuery[string, Post](api, "getPost", QueryDef[string, Post]{
		Query: func(arg string) any { return arg },
	})

	s.Dispatch(endpoint.Initiate("1", InitiateOptions{}))
	entry := endpoint.Select("1")(s.GetState())
	if entry.Status != StatusRejected {
		t.Fatalf("status = %v, want rejected", entry.Status)
	}
	if entry.Error == nil || entry.Error.Kind != KindFetchError {
		t.Fatalf("expected FETCH_ERROR, got %+v", entry.Error)
	}
}
