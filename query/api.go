// Package query implements an RTK-Query-style cache-keyed request engine:
// endpoints are declared against a shared BaseQuery, results are cached
// by a canonical fingerprint of their argument, queries dedupe in-flight
// requests and invalidate by tag, and mutations run the same lifecycle
// without cacheKey coalescing. Grounded on the teacher's
// reactivity/resource.go (Data/Loading/Error plus a staleness token) and
// generalized into a full multi-endpoint cache; HTTP transport style is
// grounded in the pack's go-chi/chi usage (2lar-b2).
package query

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxkit/fluxkit/internal/canon"
	"github.com/fluxkit/fluxkit/metrics"
	"github.com/fluxkit/fluxkit/store"
)

const defaultKeepUnusedDataFor = 60 * time.Second

// API is the runtime CreateAPI produces: a reducer, a dispatchable
// reducer path, and the endpoint registry typed endpoint handles close
// over.
type API struct {
	ReducerPath       string
	BaseQuery         BaseQuery
	TagTypes          []string
	KeepUnusedDataFor time.Duration
	Metrics           *metrics.Registry

	Reducer store.Reducer

	mu         sync.Mutex
	timers     map[string]*time.Timer
	retriggers map[string]func()
	storeMu    sync.Mutex
	theStore   store.Store
}

// Config is the input to CreateAPI.
type Config struct {
	ReducerPath       string
	BaseQuery         BaseQuery
	TagTypes          []string
	KeepUnusedDataFor time.Duration // 0 means the 60s default
	Metrics           *metrics.Registry
}

// CreateAPI builds an API. Endpoints are then declared against it with
// DefineQuery/DefineMutation.
func CreateAPI(cfg Config) *API {
	keep := cfg.KeepUnusedDataFor
	if keep == 0 {
		keep = defaultKeepUnusedDataFor
	}
	a := &API{
		ReducerPath:       cfg.ReducerPath,
		BaseQuery:         cfg.BaseQuery,
		TagTypes:          cfg.TagTypes,
		KeepUnusedDataFor: keep,
		Metrics:           cfg.Metrics,
		timers:            make(map[string]*time.Timer),
	}
	a.Reducer = a.buildReducer()
	return a
}

// Attach records the store an API's background timers dispatch against.
// Call it once after the store is constructed, before any endpoint is
// initiated.
func (a *API) Attach(s store.Store) {
	a.storeMu.Lock()
	a.theStore = s
	a.storeMu.Unlock()
}

func (a *API) dispatchToStore(action store.Action) {
	a.storeMu.Lock()
	s := a.theStore
	a.storeMu.Unlock()
	if s != nil {
		s.Dispatch(action)
	}
}

func (a *API) dispatchThunkToStore(thunk store.Thunk) {
	a.storeMu.Lock()
	s := a.theStore
	a.storeMu.Unlock()
	if s != nil {
		s.Dispatch(thunk)
	}
}

// registerRetrigger records how to re-run this cacheKey's query so tag
// invalidation (which only knows cacheKeys, not endpoint/arg pairs) can
// start a refetch for subscribed entries it marks pending.
func (a *API) registerRetrigger(cacheKey string, fn func()) {
	a.mu.Lock()
	if a.retriggers == nil {
		a.retriggers = make(map[string]func())
	}
	a.retriggers[cacheKey] = fn
	a.mu.Unlock()
}

func (a *API) retrigger(cacheKey string) (func(), bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn, ok := a.retriggers[cacheKey]
	return fn, ok
}

func (a *API) selectState(getState func() any) State {
	raw := getState()
	if m, ok := raw.(map[string]any); ok {
		raw = m[a.ReducerPath]
	}
	s, _ := raw.(State)
	return s
}

func (a *API) cancelRetention(cacheKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[cacheKey]; ok {
		t.Stop()
		delete(a.timers, cacheKey)
	}
}

func (a *API) scheduleRetention(cacheKey string, keepFor time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[cacheKey]; ok {
		t.Stop()
	}
	a.timers[cacheKey] = time.AfterFunc(keepFor, func() {
		a.mu.Lock()
		delete(a.timers, cacheKey)
		a.mu.Unlock()
		a.dispatchToStore(store.Action{
			Type: a.ReducerPath + "/retentionExpire",
			Meta: map[string]any{"cacheKey": cacheKey},
		})
	})
}

// QueryDef declares a query endpoint: Query builds the BaseQuery
// arguments from the endpoint argument, ProvidesTags lists what the
// result should be invalidated by, and KeepUnusedDataFor overrides the
// API-wide retention window for this endpoint only.
type QueryDef[Arg, Result any] struct {
	Query             func(arg Arg) any
	TransformResponse func(raw any, arg Arg) (Result, error)
	ProvidesTags      func(result Result, err error, arg Arg) []Tag
	KeepUnusedDataFor time.Duration
}

// QueryEndpoint is the typed handle DefineQuery returns.
type QueryEndpoint[Arg, Result any] struct {
	api  *API
	name string
	def  QueryDef[Arg, Result]
}

// DefineQuery registers a query endpoint named name on api.
func DefineQuery[Arg, Result any](api *API, name string, def QueryDef[Arg, Result]) *QueryEndpoint[Arg, Result] {
	return &QueryEndpoint[Arg, Result]{api: api, name: name, def: def}
}

func (e *QueryEndpoint[Arg, Result]) cacheKey(arg Arg) string {
	fp, err := canon.Fingerprint(arg)
	if err != nil {
		fp = e.name
	}
	return e.name + ":" + fp
}

// InitiateOptions configure one Initiate/hook subscription.
type InitiateOptions struct {
	ForceRefetch bool
	Subscribe    bool // not read: Initiate always subscribes, and the hook layer does not set it
}

// Initiate returns a thunk that subscribes to this query's cacheKey,
// starting a request unless one is already in flight or (absent a
// forced refetch) already fulfilled.
func (e *QueryEndpoint[Arg, Result]) Initiate(arg Arg, opts InitiateOptions) store.Thunk {
	return func(dispatch store.DispatchFunc, getState func() any, extra any) (any, error) {
		cacheKey := e.cacheKey(arg)
		e.api.registerRetrigger(cacheKey, func() {
			e.api.dispatchThunkToStore(e.Initiate(arg, InitiateOptions{ForceRefetch: true}))
		})
		dispatch(store.Action{
			Type: e.api.ReducerPath + "/subscribe",
			Meta: map[string]any{"cacheKey": cacheKey},
		})
		e.api.cancelRetention(cacheKey)

		st := e.api.selectState(getState)
		entry, exists := st.Queries[cacheKey]
		if exists && entry.Status == StatusPending {
			e.api.Metrics.ObserveQueryCacheResult(e.name, "hit")
			return cacheKey, nil // already in flight, dedup
		}
		if exists && entry.Status == StatusFulfilled && !opts.ForceRefetch {
			e.api.Metrics.ObserveQueryCacheResult(e.name, "hit")
			return cacheKey, nil
		}
		e.api.Metrics.ObserveQueryCacheResult(e.name, "miss")

		requestID := uuid.NewString()
		dispatch(store.Action{
			Type: e.api.ReducerPath + "/queryStart",
			Meta: map[string]any{"cacheKey": cacheKey, "requestId": requestID},
		})

		res := e.api.BaseQuery(e.def.Query(arg), QueryAPI{Dispatch: dispatch, GetState: getState})
		if res.Error != nil {
			e.api.Metrics.ObserveQueryCacheResult(e.name, "error")
			dispatch(store.Action{
				Type:  e.api.ReducerPath + "/queryError",
				Meta:  map[string]any{"cacheKey": cacheKey, "requestId": requestID},
				Error: res.Error,
			})
			return cacheKey, res.Error
		}

		var result Result
		if e.def.TransformResponse != nil {
			r, err := e.def.TransformResponse(res.Data, arg)
			if err != nil {
				qerr := &QueryError{Kind: KindParsingError, Err: err.Error()}
				e.api.Metrics.ObserveQueryCacheResult(e.name, "error")
				dispatch(store.Action{
					Type:  e.api.ReducerPath + "/queryError",
					Meta:  map[string]any{"cacheKey": cacheKey, "requestId": requestID},
					Error: qerr,
				})
				return cacheKey, qerr
			}
			result = r
		} else if v, ok := res.Data.(Result); ok {
			result = v
		}

		var tags []Tag
		if e.def.ProvidesTags != nil {
			tags = e.def.ProvidesTags(result, nil, arg)
		}
		dispatch(store.Action{
			Type:    e.api.ReducerPath + "/querySuccess",
			Payload: result,
			Meta: map[string]any{
				"cacheKey":  cacheKey,
				"requestId": requestID,
				"now":       time.Now().UnixMilli(),
				"tags":      tags,
			},
		})
		return cacheKey, nil
	}
}

// Unsubscribe returns a thunk that decrements the subscriber count for
// arg's cacheKey and, once it reaches 0, schedules removal after the
// endpoint's (or API's) retention window.
func (e *QueryEndpoint[Arg, Result]) Unsubscribe(arg Arg) store.Thunk {
	return func(dispatch store.DispatchFunc, getState func() any, extra any) (any, error) {
		cacheKey := e.cacheKey(arg)
		res, err := dispatch(store.Action{
			Type: e.api.ReducerPath + "/unsubscribe",
			Meta: map[string]any{"cacheKey": cacheKey},
		})
		st := e.api.selectState(getState)
		if entry, ok := st.Queries[cacheKey]; ok && entry.Subscribers == 0 {
			keep := e.def.KeepUnusedDataFor
			if keep == 0 {
				keep = e.api.KeepUnusedDataFor
			}
			e.api.scheduleRetention(cacheKey, keep)
		}
		return res, err
	}
}

// Select returns a selector reading this endpoint's cache entry for arg
// out of the API's root state.
func (e *QueryEndpoint[Arg, Result]) Select(arg Arg) func(rootState any) CacheEntry {
	cacheKey := e.cacheKey(arg)
	return func(rootState any) CacheEntry {
		st := e.api.selectState(func() any { return rootState })
		return st.Queries[cacheKey]
	}
}

// MutationDef declares a mutation endpoint.
type MutationDef[Arg, Result any] struct {
	Query             func(arg Arg) any
	TransformResponse func(raw any, arg Arg) (Result, error)
	InvalidatesTags   func(result Result, err error, arg Arg) []Tag
}

// MutationEndpoint is the typed handle DefineMutation returns.
type MutationEndpoint[Arg, Result any] struct {
	api  *API
	name string
	def  MutationDef[Arg, Result]
}

// DefineMutation registers a mutation endpoint named name on api.
func DefineMutation[Arg, Result any](api *API, name string, def MutationDef[Arg, Result]) *MutationEndpoint[Arg, Result] {
	return &MutationEndpoint[Arg, Result]{api: api, name: name, def: def}
}

// Initiate returns a thunk performing one mutation call. mutationKey
// defaults to a fresh request id; pass a fixedCacheKey to share state
// across call sites instead.
func (e *MutationEndpoint[Arg, Result]) Initiate(arg Arg, fixedCacheKey string) store.Thunk {
	return func(dispatch store.DispatchFunc, getState func() any, extra any) (any, error) {
		mutationKey := fixedCacheKey
		if mutationKey == "" {
			mutationKey = uuid.NewString()
		}
		dispatch(store.Action{
			Type: e.api.ReducerPath + "/mutationStart",
			Meta: map[string]any{"mutationKey": mutationKey},
		})

		res := e.api.BaseQuery(e.def.Query(arg), QueryAPI{Dispatch: dispatch, GetState: getState})
		if res.Error != nil {
			dispatch(store.Action{
				Type:  e.api.ReducerPath + "/mutationError",
				Meta:  map[string]any{"mutationKey": mutationKey},
				Error: res.Error,
			})
			return mutationKey, res.Error
		}

		var result Result
		if e.def.TransformResponse != nil {
			r, err := e.def.TransformResponse(res.Data, arg)
			if err != nil {
				qerr := &QueryError{Kind: KindParsingError, Err: err.Error()}
				dispatch(store.Action{
					Type:  e.api.ReducerPath + "/mutationError",
					Meta:  map[string]any{"mutationKey": mutationKey},
					Error: qerr,
				})
				return mutationKey, qerr
			}
			result = r
		} else if v, ok := res.Data.(Result); ok {
			result = v
		}

		dispatch(store.Action{
			Type:    e.api.ReducerPath + "/mutationSuccess",
			Payload: result,
			Meta:    map[string]any{"mutationKey": mutationKey},
		})

		if e.def.InvalidatesTags != nil {
			tags := e.def.InvalidatesTags(result, nil, arg)
			if len(tags) > 0 {
				dispatch(store.Action{Type: e.api.ReducerPath + "/invalidateTags", Payload: tags})
				after := e.api.selectState(getState)
				for key := range after.cacheKeysForTags(tags) {
					entry, ok := after.Queries[key]
					if !ok || entry.Status != StatusPending {
						continue
					}
					if fn, ok := e.api.retrigger(key); ok {
						go fn()
					}
				}
			}
		}
		return mutationKey, nil
	}
}

// Select returns a selector reading this mutation's cache entry.
func (e *MutationEndpoint[Arg, Result]) Select(mutationKey string) func(rootState any) CacheEntry {
	return func(rootState any) CacheEntry {
		st := e.api.selectState(func() any { return rootState })
		return st.Mutations[mutationKey]
	}
}
