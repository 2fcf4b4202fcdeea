package query

import (
	"sync"
	"time"

	"github.com/fluxkit/fluxkit/reactivity"
	"github.com/fluxkit/fluxkit/store"
)

// HookOptions configure one hook subscription (spec.md §4.9).
type HookOptions struct {
	Skip            bool
	RefetchOnMount  bool
	RefetchOnFocus  bool
	StaleTime       time.Duration
	PollingInterval time.Duration
}

// QueryHookState is the reactive view a query hook exposes: every field
// is a Signal so a caller wired into the reactivity runtime (an Effect
// or Memo) re-runs automatically when the cache entry changes.
type QueryHookState struct {
	Data            reactivity.Signal[any]
	CurrentData     reactivity.Signal[any]
	Error           reactivity.Signal[*QueryError]
	IsLoading       reactivity.Signal[bool]
	IsFetching      reactivity.Signal[bool]
	IsSuccess       reactivity.Signal[bool]
	IsError         reactivity.Signal[bool]
	IsUninitialized reactivity.Signal[bool]
	Refetch         func()
	Dispose         func()
}

var focusMu sync.Mutex
var focusListeners = map[int]func(){}
var focusNextID int

// NotifyFocus is the integration point a host application calls when its
// window regains focus; every hook created with RefetchOnFocus refetches
// in response. There is no DOM focus event in this runtime, so callers
// own detecting focus themselves (a wasm/browser binding, a terminal UI
// resume signal, whatever fits the host).
func NotifyFocus() {
	focusMu.Lock()
	listeners := make([]func(), 0, len(focusListeners))
	for _, fn := range focusListeners {
		listeners = append(listeners, fn)
	}
	focusMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func registerFocusListener(fn func()) (unregister func()) {
	focusMu.Lock()
	id := focusNextID
	focusNextID++
	focusListeners[id] = fn
	focusMu.Unlock()
	return func() {
		focusMu.Lock()
		delete(focusListeners, id)
		focusMu.Unlock()
	}
}

// CreateQueryHook subscribes to endpoint's cacheKey for arg and keeps a
// QueryHookState in sync with it, starting a fetch per the dedup/
// retention rules in api.go unless Skip is set.
func CreateQueryHook[Arg, Result any](s store.Store, endpoint *QueryEndpoint[Arg, Result], arg Arg, opts HookOptions) *QueryHookState {
	data := reactivity.CreateSignal[any](nil)
	currentData := reactivity.CreateSignal[any](nil)
	errSig := reactivity.CreateSignal[*QueryError](nil)
	isLoading := reactivity.CreateSignal(false)
	isFetching := reactivity.CreateSignal(false)
	isSuccess := reactivity.CreateSignal(false)
	isError := reactivity.CreateSignal(false)
	isUninitialized := reactivity.CreateSignal(true)

	selector := endpoint.Select(arg)
	everFulfilled := false

	apply := func() {
		entry := selector(s.GetState())
		isUninitialized.Set(entry.Status == StatusUninitialized)
		isFetching.Set(entry.IsFetching)
		isLoading.Set(entry.IsFetching && !everFulfilled)
		isSuccess.Set(entry.Status == StatusFulfilled)
		isError.Set(entry.Status == StatusRejected)
		errSig.Set(entry.Error)
		data.Set(entry.Data)
		if entry.Status == StatusFulfilled {
			everFulfilled = true
			currentData.Set(entry.Data)
		}
	}

	doFetch := func(force bool) {
		if opts.Skip {
			return
		}
		go s.Dispatch(endpoint.Initiate(arg, InitiateOptions{ForceRefetch: force}))
	}

	apply()
	if !opts.Skip {
		doFetch(opts.RefetchOnMount)
	}

	unsubStore := s.Subscribe(apply)

	var unsubFocus func()
	if opts.RefetchOnFocus {
		unsubFocus = registerFocusListener(func() { doFetch(true) })
	}

	var pollStop chan struct{}
	if opts.PollingInterval > 0 {
		pollStop = make(chan struct{})
		go func() {
			ticker := time.NewTicker(opts.PollingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					doFetch(true)
				case <-pollStop:
					return
				}
			}
		}()
	}

	disposed := false
	var disposeMu sync.Mutex
	dispose := func() {
		disposeMu.Lock()
		defer disposeMu.Unlock()
		if disposed {
			return
		}
		disposed = true
		unsubStore()
		if unsubFocus != nil {
			unsubFocus()
		}
		if pollStop != nil {
			close(pollStop)
		}
		if !opts.Skip {
			go s.Dispatch(endpoint.Unsubscribe(arg))
		}
	}

	return &QueryHookState{
		Data:            data,
		CurrentData:     currentData,
		Error:           errSig,
		IsLoading:       isLoading,
		IsFetching:      isFetching,
		IsSuccess:       isSuccess,
		IsError:         isError,
		IsUninitialized: isUninitialized,
		Refetch:         func() { doFetch(true) },
		Dispose:         dispose,
	}
}

// LazyQueryHook is CreateQueryHook's no-auto-initiation counterpart:
// Trigger starts (or refetches) the query on demand.
type LazyQueryHook struct {
	State   *QueryHookState
	Trigger func()
}

// CreateLazyQueryHook behaves like CreateQueryHook with Skip forced on
// for the hook's whole life, so the hook's own Refetch, focus and polling
// triggers do nothing. Trigger initiates the query, forcing a refetch on
// every call after the first.
func CreateLazyQueryHook[Arg, Result any](s store.Store, endpoint *QueryEndpoint[Arg, Result], arg Arg, opts HookOptions) *LazyQueryHook {
	opts.Skip = true
	state := CreateQueryHook(s, endpoint, arg, opts)
	triggered := false
	var mu sync.Mutex
	return &LazyQueryHook{
		State: state,
		Trigger: func() {
			mu.Lock()
			defer mu.Unlock()
			go s.Dispatch(endpoint.Initiate(arg, InitiateOptions{ForceRefetch: triggered}))
			triggered = true
		},
	}
}

// MutationHookState is the reactive view CreateMutationHook exposes.
type MutationHookState struct {
	Data            reactivity.Signal[any]
	Error           reactivity.Signal[*QueryError]
	IsLoading       reactivity.Signal[bool]
	IsSuccess       reactivity.Signal[bool]
	IsError         reactivity.Signal[bool]
	IsUninitialized reactivity.Signal[bool]
	Trigger         func(arg any)
	Reset           func()
}

// CreateMutationHook returns a callable trigger plus reactive mutation
// state, keyed by a fresh request id per call unless fixedCacheKey is
// set (sharing state across every call site using the same key).
func CreateMutationHook[Arg, Result any](s store.Store, endpoint *MutationEndpoint[Arg, Result], fixedCacheKey string) *MutationHookState {
	data := reactivity.CreateSignal[any](nil)
	errSig := reactivity.CreateSignal[*QueryError](nil)
	isLoading := reactivity.CreateSignal(false)
	isSuccess := reactivity.CreateSignal(false)
	isError := reactivity.CreateSignal(false)
	isUninitialized := reactivity.CreateSignal(true)

	var mu sync.Mutex
	activeKey := fixedCacheKey
	var unsub func()

	watch := func(key string) {
		mu.Lock()
		if unsub != nil {
			unsub()
		}
		activeKey = key
		selector := endpoint.Select(key)
		apply := func() {
			entry := selector(s.GetState())
			isUninitialized.Set(entry.Status == "")
			isLoading.Set(entry.Status == StatusPending)
			isSuccess.Set(entry.Status == StatusFulfilled)
			isError.Set(entry.Status == StatusRejected)
			errSig.Set(entry.Error)
			data.Set(entry.Data)
		}
		unsub = s.Subscribe(apply)
		mu.Unlock()
		apply()
	}

	return &MutationHookState{
		Data:            data,
		Error:           errSig,
		IsLoading:       isLoading,
		IsSuccess:       isSuccess,
		IsError:         isError,
		IsUninitialized: isUninitialized,
		Trigger: func(arg any) {
			typedArg, _ := arg.(Arg)
			key := fixedCacheKey
			thunk := endpoint.Initiate(typedArg, fixedCacheKey)
			go func() {
				res, _ := s.Dispatch(thunk)
				if key == "" {
					if k, ok := res.(string); ok {
						watch(k)
					}
				}
			}()
			if key != "" {
				watch(key)
			}
		},
		Reset: func() {
			mu.Lock()
			if unsub != nil {
				unsub()
				unsub = nil
			}
			mu.Unlock()
			data.Set(nil)
			errSig.Set(nil)
			isLoading.Set(false)
			isSuccess.Set(false)
			isError.Set(false)
			isUninitialized.Set(true)
			activeKey = ""
		},
	}
}
