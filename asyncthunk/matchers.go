package asyncthunk

import (
	"strings"

	"github.com/fluxkit/fluxkit/store"
)

// IsPendingAction reports whether an action is any thunk's pending
// action, matched by its "/pending" suffix the way redux-toolkit's
// isPending() matcher does without requiring a reference to the thunk.
func IsPendingAction(a store.Action) bool { return strings.HasSuffix(a.Type, "/pending") }

// IsFulfilledAction reports whether an action is any thunk's fulfilled action.
func IsFulfilledAction(a store.Action) bool { return strings.HasSuffix(a.Type, "/fulfilled") }

// IsRejectedAction reports whether an action is any thunk's rejected action.
func IsRejectedAction(a store.Action) bool { return strings.HasSuffix(a.Type, "/rejected") }

// IsSettledAction reports whether an action is the settled action
// dispatched after every fulfilled or rejected terminal action.
func IsSettledAction(a store.Action) bool { return strings.HasSuffix(a.Type, "/settled") }

// thunkRef is any AsyncThunk, as accepted by IsAsyncThunkPending to
// narrow an action predicate to a specific set of thunks' actions instead
// of any thunk in the store, the way redux-toolkit's
// isAsyncThunkAction/isPending(thunkA, thunkB) overloads do.
type thunkRef interface{ pendingType() string }

func (t *AsyncThunk[Arg, Result]) pendingType() string { return t.Pending }

// IsAsyncThunkPending returns a predicate matching the pending action of
// any of the given thunks; with zero thunks it falls back to
// IsPendingAction (matching any thunk's pending action).
func IsAsyncThunkPending(thunks ...thunkRef) func(store.Action) bool {
	if len(thunks) == 0 {
		return IsPendingAction
	}
	types := make(map[string]struct{}, len(thunks))
	for _, t := range thunks {
		types[t.pendingType()] = struct{}{}
	}
	return func(a store.Action) bool {
		_, ok := types[a.Type]
		return ok
	}
}

// IsRejectedWithValue reports whether a rejected action carries a
// rejectWithValue payload rather than a serialized error.
func IsRejectedWithValue(a store.Action) bool {
	if !IsRejectedAction(a) {
		return false
	}
	v, ok := a.MetaValue(store.MetaRejectedWithValue)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IsAborted reports whether a rejected action resulted from cancellation.
func IsAborted(a store.Action) bool {
	if !IsRejectedAction(a) {
		return false
	}
	v, ok := a.MetaValue(store.MetaAborted)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
