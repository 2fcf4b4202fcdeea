package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// QueryAPI is what a BaseQuery gets alongside its args: an abort signal,
// and dispatch/getState for base queries sophisticated enough to read
// other cache entries or dispatch auxiliary actions.
type QueryAPI struct {
	Context  context.Context
	Dispatch func(action any) (any, error)
	GetState func() any
}

// QueryResult is the discriminated {data}|{error} a BaseQuery returns.
type QueryResult struct {
	Data  any
	Error *QueryError
}

// QueryError is the error model shared by every endpoint: a real HTTP
// status code in Status, or one of the Kind sentinels below for failures
// that have no status, plus whatever payload the server or transport
// attached.
type QueryError struct {
	Status int
	Kind   string // "" for a real HTTP status, else FETCH_ERROR/PARSING_ERROR
	Data   any
	Err    string
}

const (
	KindFetchError    = "FETCH_ERROR"
	KindParsingError  = "PARSING_ERROR"
	KindCustomError   = "CUSTOM_ERROR"
	KindTimeoutError  = "TIMEOUT_ERROR"
)

func (e *QueryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind != "" {
		return fmt.Sprintf("query: %s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("query: http %d", e.Status)
}

// BaseQuery performs one request for a given endpoint-defined arg value
// and returns the discriminated result.
type BaseQuery func(args any, api QueryAPI) QueryResult

// FetchArgs is the structured form a FetchBaseQuery request may take;
// passing a bare string is equivalent to FetchArgs{URL: s}.
type FetchArgs struct {
	URL     string
	Method  string
	Body    any
	Headers map[string]string
	Params  map[string]string
}

// FetchBaseQueryConfig configures FetchBaseQuery.
type FetchBaseQueryConfig struct {
	BaseURL        string
	PrepareHeaders func(headers http.Header, api QueryAPI) http.Header
	Client         *http.Client
}

// FetchBaseQuery builds the default net/http-backed BaseQuery, the
// transport contract itself (spec.md §6) rather than a concern a pack
// library replaces; go-chi/chi is wired on the example server side
// instead of here.
func FetchBaseQuery(cfg FetchBaseQueryConfig) BaseQuery {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	return func(args any, api QueryAPI) QueryResult {
		fa := toFetchArgs(args)
		method := fa.Method
		if method == "" {
			method = http.MethodGet
		}

		reqURL, err := joinURL(cfg.BaseURL, fa.URL, fa.Params)
		if err != nil {
			return QueryResult{Error: &QueryError{Kind: KindFetchError, Err: err.Error()}}
		}

		var body io.Reader
		if fa.Body != nil && method != http.MethodGet && method != http.MethodHead {
			buf, err := json.Marshal(fa.Body)
			if err != nil {
				return QueryResult{Error: &QueryError{Kind: KindParsingError, Err: err.Error()}}
			}
			body = bytes.NewReader(buf)
		}

		ctx := api.Context
		if ctx == nil {
			ctx = context.Background()
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return QueryResult{Error: &QueryError{Kind: KindFetchError, Err: err.Error()}}
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range fa.Headers {
			req.Header.Set(k, v)
		}
		if cfg.PrepareHeaders != nil {
			req.Header = cfg.PrepareHeaders(req.Header, api)
		}

		resp, err := client.Do(req)
		if err != nil {
			return QueryResult{Error: &QueryError{Kind: KindFetchError, Err: err.Error()}}
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return QueryResult{Error: &QueryError{Kind: KindFetchError, Err: err.Error()}}
		}

		var parsed any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return QueryResult{Error: &QueryError{Kind: KindParsingError, Err: err.Error(), Data: string(raw)}}
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return QueryResult{Error: &QueryError{Status: resp.StatusCode, Data: parsed}}
		}
		return QueryResult{Data: parsed}
	}
}

func toFetchArgs(args any) FetchArgs {
	switch a := args.(type) {
	case string:
		return FetchArgs{URL: a}
	case FetchArgs:
		return a
	case *FetchArgs:
		if a != nil {
			return *a
		}
	}
	return FetchArgs{}
}

func joinURL(base, path string, params map[string]string) (string, error) {
	full := path
	if base != "" {
		full = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	}
	u, err := url.Parse(full)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
