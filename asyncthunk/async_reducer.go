package asyncthunk

import "github.com/fluxkit/fluxkit/store"

// AsyncState is the common shape for a slice of state driven entirely by
// one AsyncThunk: a status, the last request's id (for stale-response
// detection), the last successful payload, and the last error.
type AsyncState[Result any] struct {
	Status    store.RequestStatus
	Data      Result
	Error     *SerializedError
	RequestID string
}

// AddCases wires this thunk's pending/fulfilled/rejected actions into an
// ExtraReducerBuilder for AsyncState[Result], the generic form of
// redux-toolkit's builder.addCase(thunk.pending, ...) trio. Out-of-order
// responses are handled the conventional way: a fulfilled/rejected action
// whose requestId no longer matches draft.RequestID is ignored, since a
// newer request has since been dispatched.
func (t *AsyncThunk[Arg, Result]) AddCases(b *store.ExtraReducerBuilder[AsyncState[Result]]) *store.ExtraReducerBuilder[AsyncState[Result]] {
	b.AddCase(t.Pending, func(draft *AsyncState[Result], action store.Action) {
		draft.Status = store.StatusPending
		draft.Error = nil
		if rid, ok := action.MetaValue(store.MetaRequestID); ok {
			draft.RequestID, _ = rid.(string)
		}
	})
	b.AddCase(t.Fulfilled, func(draft *AsyncState[Result], action store.Action) {
		if rid, ok := action.MetaValue(store.MetaRequestID); ok {
			if id, _ := rid.(string); id != "" && id != draft.RequestID {
				return
			}
		}
		draft.Status = store.StatusFulfilled
		draft.Error = nil
		if v, ok := action.Payload.(Result); ok {
			draft.Data = v
		}
	})
	b.AddCase(t.Rejected, func(draft *AsyncState[Result], action store.Action) {
		if rid, ok := action.MetaValue(store.MetaRequestID); ok {
			if id, _ := rid.(string); id != "" && id != draft.RequestID {
				return
			}
		}
		draft.Status = store.StatusRejected
		if action.Error != nil {
			if se, ok := action.Error.(SerializedError); ok {
				draft.Error = &se
			} else {
				se2 := serializeError(action.Error)
				draft.Error = &se2
			}
		}
	})
	return b
}

// CreateAsyncSlice is the common case of a slice whose entire state is
// one AsyncThunk's lifecycle: it wires AddCases for you and returns the
// resulting store.Slice.
func CreateAsyncSlice[Arg, Result any](name string, thunk *AsyncThunk[Arg, Result]) store.Slice[AsyncState[Result]] {
	return store.CreateSlice(store.SliceConfig[AsyncState[Result]]{
		Name:         name,
		InitialState: AsyncState[Result]{},
		ExtraReducers: func(b *store.ExtraReducerBuilder[AsyncState[Result]]) {
			thunk.AddCases(b)
		},
	})
}
