// Package asyncthunk implements the pending/fulfilled/rejected lifecycle
// for asynchronous work dispatched through a store.Store, grounded on the
// teacher's action/future.go promise shape (Then/Catch/Await) but
// expressed as a store.Thunk so results land in the reducer graph instead
// of being observed only through callbacks.
package asyncthunk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fluxkit/fluxkit/store"
)

// ThunkAPI is handed to the payload creator: dispatch/getState mirror
// store.MiddlewareAPI, Context carries the per-request abort signal, and
// Extra is whatever ThunkMiddleware was constructed with (typically a
// BaseQuery or an API client).
type ThunkAPI struct {
	Dispatch  store.DispatchFunc
	GetState  func() any
	Extra     any
	RequestID string
	Context   context.Context
}

// RejectedValue wraps a caller-supplied rejection payload distinct from a
// Go error, mirroring redux-toolkit's rejectWithValue.
type RejectedValue struct{ Value any }

func (r RejectedValue) Error() string { return fmt.Sprintf("asyncthunk: rejected with %v", r.Value) }

// RejectWithValue lets a payload creator reject with a typed value
// instead of a plain error: return RejectWithValue(v) as the error.
func RejectWithValue(value any) error { return RejectedValue{Value: value} }

// SerializedError is the error shape stored on rejected actions so it
// survives round-tripping through persistence (a Go error value itself
// may not be comparable or serializable).
type SerializedError struct {
	Name    string
	Message string
}

func (e SerializedError) Error() string { return e.Message }

func serializeError(err error) SerializedError {
	return SerializedError{Name: fmt.Sprintf("%T", err), Message: err.Error()}
}

// Condition gates whether the thunk runs at all; returning false skips
// execution entirely (no pending/fulfilled/rejected dispatched, unless
// DispatchConditionRejection is set).
type Condition[Arg any] func(arg Arg, getState func() any) bool

type config[Arg any] struct {
	condition                  Condition[Arg]
	dispatchConditionRejection bool
	idGenerator                func() string
}

// Option configures CreateAsyncThunk.
type Option[Arg any] func(*config[Arg])

func WithCondition[Arg any](c Condition[Arg]) Option[Arg] {
	return func(cfg *config[Arg]) { cfg.condition = c }
}

func WithDispatchConditionRejection[Arg any]() Option[Arg] {
	return func(cfg *config[Arg]) { cfg.dispatchConditionRejection = true }
}

func WithIDGenerator[Arg any](fn func() string) Option[Arg] {
	return func(cfg *config[Arg]) { cfg.idGenerator = fn }
}

// AsyncThunk is a typed, cancellable unit of async work with a generated
// pending/fulfilled/rejected action trio.
type AsyncThunk[Arg, Result any] struct {
	TypePrefix string
	Pending    string
	Fulfilled  string
	Rejected   string
	Settled    string

	payloadCreator func(ctx context.Context, arg Arg, api ThunkAPI) (Result, error)
	cfg            config[Arg]

	mu        sync.Mutex
	cancelers map[string]context.CancelFunc
}

// CreateAsyncThunk builds an AsyncThunk whose four lifecycle action
// types are "<typePrefix>/pending", "<typePrefix>/fulfilled",
// "<typePrefix>/rejected", and "<typePrefix>/settled".
func CreateAsyncThunk[Arg, Result any](typePrefix string, payloadCreator func(ctx context.Context, arg Arg, api ThunkAPI) (Result, error), opts ...Option[Arg]) *AsyncThunk[Arg, Result] {
	cfg := config[Arg]{idGenerator: func() string { return uuid.NewString() }}
	for _, apply := range opts {
		apply(&cfg)
	}
	return &AsyncThunk[Arg, Result]{
		TypePrefix:     typePrefix,
		Pending:        typePrefix + "/pending",
		Fulfilled:      typePrefix + "/fulfilled",
		Rejected:       typePrefix + "/rejected",
		Settled:        typePrefix + "/settled",
		payloadCreator: payloadCreator,
		cfg:            cfg,
		cancelers:      make(map[string]context.CancelFunc),
	}
}

// Call returns a store.Thunk that runs the payload creator and dispatches
// the pending/fulfilled/rejected trio around it.
func (t *AsyncThunk[Arg, Result]) Call(arg Arg) store.Thunk {
	return func(dispatch store.DispatchFunc, getState func() any, extra any) (any, error) {
		if t.cfg.condition != nil && !t.cfg.condition(arg, getState) {
			if !t.cfg.dispatchConditionRejection {
				return nil, nil
			}
			act := store.Action{
				Type: t.Rejected,
				Meta: map[string]any{
					store.MetaArg:           arg,
					store.MetaCondition:     true,
					store.MetaRequestStatus: store.StatusRejected,
				},
			}
			result, err := dispatch(act)
			dispatch(store.Action{Type: t.Settled, Meta: act.Meta})
			return result, err
		}

		requestID := t.cfg.idGenerator()
		ctx, cancel := context.WithCancel(context.Background())
		t.mu.Lock()
		t.cancelers[requestID] = cancel
		t.mu.Unlock()
		defer func() {
			t.mu.Lock()
			delete(t.cancelers, requestID)
			t.mu.Unlock()
			cancel()
		}()

		dispatch(store.Action{
			Type: t.Pending,
			Meta: map[string]any{
				store.MetaArg:           arg,
				store.MetaRequestID:     requestID,
				store.MetaRequestStatus: store.StatusPending,
			},
		})

		api := ThunkAPI{Dispatch: dispatch, GetState: getState, Extra: extra, RequestID: requestID, Context: ctx}
		result, err := t.payloadCreator(ctx, arg, api)
		if err != nil {
			meta := map[string]any{
				store.MetaArg:           arg,
				store.MetaRequestID:     requestID,
				store.MetaRequestStatus: store.StatusRejected,
			}
			var rv RejectedValue
			if errors.As(err, &rv) {
				meta[store.MetaRejectedWithValue] = true
				act := store.Action{Type: t.Rejected, Payload: rv.Value, Meta: meta}
				res, derr := dispatch(act)
				dispatch(store.Action{Type: t.Settled, Meta: meta})
				return res, derr
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				meta[store.MetaAborted] = true
			}
			serialized := serializeError(err)
			act := store.Action{Type: t.Rejected, Meta: meta, Error: serialized}
			_, dispatchErr := dispatch(act)
			dispatch(store.Action{Type: t.Settled, Meta: meta})
			if dispatchErr != nil {
				return nil, dispatchErr
			}
			return act, err
		}

		meta := map[string]any{
			store.MetaArg:           arg,
			store.MetaRequestID:     requestID,
			store.MetaRequestStatus: store.StatusFulfilled,
		}
		act := store.Action{Type: t.Fulfilled, Payload: result, Meta: meta}
		res, derr := dispatch(act)
		dispatch(store.Action{Type: t.Settled, Meta: meta})
		return res, derr
	}
}

// Abort cancels the in-flight call identified by requestID, if any, and
// reports whether it was found.
func (t *AsyncThunk[Arg, Result]) Abort(requestID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.cancelers[requestID]
	if ok {
		cancel()
	}
	return ok
}

func (t *AsyncThunk[Arg, Result]) IsPending(a store.Action) bool   { return a.Type == t.Pending }
func (t *AsyncThunk[Arg, Result]) IsFulfilled(a store.Action) bool { return a.Type == t.Fulfilled }
func (t *AsyncThunk[Arg, Result]) IsRejected(a store.Action) bool  { return a.Type == t.Rejected }
