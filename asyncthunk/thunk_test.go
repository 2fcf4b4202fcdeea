package asyncthunk

import (
	"context"
	"errors"
	"testing"

	"github.com/fluxkit/fluxkit/store"
)

func newTestStore() store.Store {
	return store.CreateStore(func(state any, action store.Action) any {
		n, _ := state.(int)
		return n
	}, 0, store.ApplyMiddleware(store.ThunkMiddleware(nil)))
}

func TestAsyncThunkFulfilledSequence(t *testing.T) {
	s := newTestStore()

	thunk := CreateAsyncThunk[int, string]("fetchItem", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		return "item-1", nil
	})

	res, err := s.Dispatch(thunk.Call(1))
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	act, ok := res.(store.Action)
	if !ok {
		t.Fatalf("expected terminal action, got %T", res)
	}
	if act.Type != thunk.Fulfilled {
		t.Fatalf("terminal action type = %q, want %q", act.Type, thunk.Fulfilled)
	}
	if act.Payload != "item-1" {
		t.Fatalf("payload = %v, want item-1", act.Payload)
	}
}

func TestAsyncThunkRejectedWithValue(t *testing.T) {
	s := newTestStore()
	thunk := CreateAsyncThunk[int, string]("fetchItem", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		return "", RejectWithValue(map[string]int{"code": 400})
	})

	res, _ := s.Dispatch(thunk.Call(1))
	act := res.(store.Action)
	if act.Type != thunk.Rejected {
		t.Fatalf("type = %q, want %q", act.Type, thunk.Rejected)
	}
	rv, _ := act.MetaValue(store.MetaRejectedWithValue)
	if b, _ := rv.(bool); !b {
		t.Fatal("expected meta.rejectedWithValue = true")
	}
	if act.Error != nil {
		t.Fatalf("expected no serialized error on rejectWithValue, got %v", act.Error)
	}
}

func TestAsyncThunkPlainErrorSerialized(t *testing.T) {
	s := newTestStore()
	thunk := CreateAsyncThunk[int, string]("fetchItem", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		return "", errors.New("boom")
	})

	res, err := s.Dispatch(thunk.Call(1))
	if err == nil {
		t.Fatal("expected dispatch to surface the error")
	}
	act := res.(store.Action)
	if act.Type != thunk.Rejected {
		t.Fatalf("type = %q, want %q", act.Type, thunk.Rejected)
	}
	se, ok := act.Error.(SerializedError)
	if !ok {
		t.Fatalf("expected SerializedError, got %T", act.Error)
	}
	if se.Message != "boom" {
		t.Fatalf("message = %q, want boom", se.Message)
	}
}

func TestConditionSkipsDispatchByDefault(t *testing.T) {
	s := newTestStore()
	called := false
	thunk := CreateAsyncThunk[int, string]("fetchItem", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		called = true
		return "x", nil
	}, WithCondition(func(arg int, getState func() any) bool { return false }))

	res, err := s.Dispatch(thunk.Call(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil result on condition skip, got %v", res)
	}
	if called {
		t.Fatal("payload creator must not run when condition fails")
	}
}

func TestConditionRejectionWhenRequested(t *testing.T) {
	s := newTestStore()
	thunk := CreateAsyncThunk[int, string]("fetchItem", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		return "x", nil
	}, WithCondition(func(arg int, getState func() any) bool { return false }), WithDispatchConditionRejection[int]())

	res, _ := s.Dispatch(thunk.Call(1))
	act, ok := res.(store.Action)
	if !ok {
		t.Fatalf("expected an action, got %T", res)
	}
	if act.Type != thunk.Rejected {
		t.Fatalf("type = %q, want %q", act.Type, thunk.Rejected)
	}
	cond, _ := act.MetaValue(store.MetaCondition)
	if b, _ := cond.(bool); !b {
		t.Fatal("expected meta.condition = true")
	}
}

func TestAbortMarksRejectedActionAborted(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var thunk *AsyncThunk[int, string]
	thunk = CreateAsyncThunk[int, string]("longRunning", func(ctx context.Context, arg int, api ThunkAPI) (string, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "done", nil
	})

	s := newTestStore()
	var requestID string
	done := make(chan store.Action, 1)
	go func() {
		res, _ := s.Dispatch(thunk.Call(1))
		if act, ok := res.(store.Action); ok {
			done <- act
		} else {
			done <- store.Action{}
		}
	}()

	<-started
	// Grab the request id off the thunk's bookkeeping by aborting every
	// tracked id; with a single in-flight call this aborts it.
	thunk.mu.Lock()
	for id := range thunk.cancelers {
		requestID = id
	}
	thunk.mu.Unlock()
	if requestID == "" {
		t.Fatal("expected an in-flight request id")
	}
	thunk.Abort(requestID)
	close(release)

	act := <-done
	if act.Type != thunk.Rejected {
		t.Fatalf("type = %q, want %q", act.Type, thunk.Rejected)
	}
	if !IsAborted(act) {
		t.Fatal("expected meta.aborted = true")
	}
}

func TestIsPendingFulfilledRejectedMatchBySuffix(t *testing.T) {
	p := store.Action{Type: "x/pending"}
	f := store.Action{Type: "x/fulfilled"}
	r := store.Action{Type: "x/rejected"}
	if !IsPendingAction(p) || !IsFulfilledAction(f) || !IsRejectedAction(r) {
		t.Fatal("suffix predicates failed to match")
	}
	if IsPendingAction(f) || IsFulfilledAction(p) {
		t.Fatal("suffix predicates matched the wrong type")
	}
}
