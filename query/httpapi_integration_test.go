package query

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxkit/fluxkit/examples/httpapi"
	"github.com/fluxkit/fluxkit/store"
)

// This test exercises FetchBaseQuery against a real net/http server
// instead of a fake BaseQuery, proving the query package's contract
// with the transport layer end to end.

func TestFetchBaseQueryAgainstARealServer(t *testing.T) {
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewStore()))
	defer srv.Close()

	api := CreateAPI(Config{
		ReducerPath:       "api",
		BaseQuery:         FetchBaseQuery(FetchBaseQueryConfig{BaseURL: srv.URL}),
		KeepUnusedDataFor: 50 * time.Millisecond,
	})
	s := store.CreateStore(api.Reducer, nil, store.ApplyMiddleware(store.ThunkMiddleware(nil)))
	api.Attach(s)

	createItem := DefineMutation[string, httpapi.Item](api, "createItem", MutationDef[string, httpapi.Item]{
		Query: func(name string) any {
			return FetchArgs{URL: "/items", Method: "POST", Body: map[string]string{"name": name}}
		},
		TransformResponse: func(raw any, _ string) (httpapi.Item, error) {
			return decodeItem(raw)
		},
	})
	if _, err := s.Dispatch(createItem.Initiate("widget", "")); err != nil {
		t.Fatalf("create mutation: %v", err)
	}

	listItems := DefineQuery[string, []httpapi.Item](api, "listItems", QueryDef[string, []httpapi.Item]{
		Query: func(name string) any {
			if name == "" {
				return "/items"
			}
			return FetchArgs{URL: "/items", Params: map[string]string{"name": name}}
		},
		TransformResponse: func(raw any, _ string) ([]httpapi.Item, error) {
			rows, _ := raw.([]any)
			items := make([]httpapi.Item, 0, len(rows))
			for _, row := range rows {
				item, err := decodeItem(row)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			return items, nil
		},
	})
	if _, err := s.Dispatch(listItems.Initiate("", InitiateOptions{})); err != nil {
		t.Fatalf("list query: %v", err)
	}

	entry := listItems.Select("")(s.GetState())
	if entry.Status != StatusFulfilled {
		t.Fatalf("expected the list query to be fulfilled, got status %v error %v", entry.Status, entry.Error)
	}
	items, ok := entry.Data.([]httpapi.Item)
	if !ok || len(items) != 1 || items[0].Name != "widget" {
		t.Fatalf("expected one widget item, got %#v", entry.Data)
	}

	getItem := DefineQuery[int, httpapi.Item](api, "getItem", QueryDef[int, httpapi.Item]{
		Query: func(id int) any {
			return FetchArgs{URL: "/items/999"}
		},
		TransformResponse: func(raw any, _ int) (httpapi.Item, error) {
			return decodeItem(raw)
		},
	})
	if _, err := s.Dispatch(getItem.Initiate(999, InitiateOptions{})); err != nil {
		t.Fatalf("get query dispatch: %v", err)
	}
	missEntry := getItem.Select(999)(s.GetState())
	if missEntry.Status != StatusRejected {
		t.Fatalf("expected a 404 to reject the cache entry, got status %v", missEntry.Status)
	}
	if missEntry.Error == nil || missEntry.Error.Status != 404 {
		t.Fatalf("expected a 404 QueryError, got %#v", missEntry.Error)
	}
}

func decodeItem(raw any) (httpapi.Item, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return httpapi.Item{}, &QueryError{Kind: KindParsingError, Err: "expected an object"}
	}
	item := httpapi.Item{}
	if name, ok := m["name"].(string); ok {
		item.Name = name
	}
	if id, ok := m["id"].(float64); ok {
		item.ID = int(id)
	}
	return item, nil
}
