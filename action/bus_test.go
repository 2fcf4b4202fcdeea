package action

import (
	"errors"
	"testing"
)

func TestSubscribeReceivesMatchingActionType(t *testing.T) {
	bus := New()
	var got Action[any]
	bus.Subscribe("widget/created", func(act Action[any]) error {
		got = act
		return nil
	})

	bus.Dispatch(Action[any]{Type: "widget/created", Payload: "w1"})
	if got.Type != "widget/created" || got.Payload != "w1" {
		t.Fatalf("expected delivery of widget/created, got %+v", got)
	}
}

func TestSubscribeIgnoresNonMatchingActionType(t *testing.T) {
	bus := New()
	called := false
	bus.Subscribe("widget/created", func(act Action[any]) error {
		called = true
		return nil
	})

	bus.Dispatch(Action[any]{Type: "widget/deleted"})
	if called {
		t.Fatal("expected no delivery for a non-matching action type")
	}
}

func TestSubscribeAnyReceivesEveryAction(t *testing.T) {
	bus := New()
	var types []string
	bus.SubscribeAny(func(act any) error {
		types = append(types, act.(Action[any]).Type)
		return nil
	})

	bus.Dispatch(Action[any]{Type: "a"})
	bus.Dispatch("b")
	bus.Dispatch(42)

	if len(types) != 3 || types[0] != "a" || types[1] != "b" || types[2] != "unknown" {
		t.Fatalf("expected [a b unknown], got %v", types)
	}
}

func TestDispatchBareStringAndValue(t *testing.T) {
	bus := New()
	var got Action[any]
	bus.SubscribeAny(func(act any) error {
		got = act.(Action[any])
		return nil
	})

	bus.Dispatch("ping")
	if got.Type != "ping" || got.Payload != nil {
		t.Fatalf("expected bare string to become Action{Type: ping}, got %+v", got)
	}

	bus.Dispatch(7)
	if got.Type != "unknown" || got.Payload != 7 {
		t.Fatalf("expected a generic value to become Action{Type: unknown, Payload: 7}, got %+v", got)
	}
}

func TestSubscribePriorityOrdersDelivery(t *testing.T) {
	bus := New()
	var order []string
	bus.Subscribe("a", func(act Action[any]) error {
		order = append(order, "low")
		return nil
	}, SubWithPriority(0))
	bus.Subscribe("a", func(act Action[any]) error {
		order = append(order, "high")
		return nil
	}, SubWithPriority(10))

	bus.Dispatch(Action[any]{Type: "a"})
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("expected high before low, got %v", order)
	}
}

func TestSubOnceDisposesAfterFirstDelivery(t *testing.T) {
	bus := New()
	count := 0
	bus.Subscribe("a", func(act Action[any]) error {
		count++
		return nil
	}, SubOnce())

	bus.Dispatch(Action[any]{Type: "a"})
	bus.Dispatch(Action[any]{Type: "a"})
	if count != 1 {
		t.Fatalf("expected exactly one delivery, got %d", count)
	}
}

func TestSubFilterSkipsRejectedActions(t *testing.T) {
	bus := New()
	var received []any
	bus.Subscribe("a", func(act Action[any]) error {
		received = append(received, act.Payload)
		return nil
	}, SubFilter(func(act any) bool {
		return act.(Action[any]).Payload == "keep"
	}))

	bus.Dispatch(Action[any]{Type: "a", Payload: "drop"})
	bus.Dispatch(Action[any]{Type: "a", Payload: "keep"})
	if len(received) != 1 || received[0] != "keep" {
		t.Fatalf("expected only the kept payload, got %v", received)
	}
}

func TestDisposeStopsDelivery(t *testing.T) {
	bus := New()
	count := 0
	sub := bus.Subscribe("a", func(act Action[any]) error {
		count++
		return nil
	})

	bus.Dispatch(Action[any]{Type: "a"})
	sub.Dispose()
	bus.Dispatch(Action[any]{Type: "a"})

	if count != 1 {
		t.Fatalf("expected delivery to stop after Dispose, got count %d", count)
	}
}

func TestOnErrorReceivesHandlerErrors(t *testing.T) {
	bus := New()
	boom := errors.New("boom")
	bus.Subscribe("a", func(act Action[any]) error { return boom })

	var gotErr error
	bus.OnError(func(err error, act Action[any]) {
		gotErr = err
	})

	bus.Dispatch(Action[any]{Type: "a"})
	if gotErr != boom {
		t.Fatalf("expected OnError to observe %v, got %v", boom, gotErr)
	}
}

func TestOnErrorReceivesRecoveredPanics(t *testing.T) {
	bus := New()
	bus.Subscribe("a", func(act Action[any]) error { panic("kaboom") })

	errored := false
	bus.OnError(func(err error, act Action[any]) {
		errored = true
	})

	bus.Dispatch(Action[any]{Type: "a"})
	if !errored {
		t.Fatal("expected a panicking handler to be reported via OnError")
	}
}

func TestDispatchOptionsSetMetaSourceAndTrace(t *testing.T) {
	bus := New()
	var got Action[any]
	bus.SubscribeAny(func(act any) error {
		got = act.(Action[any])
		return nil
	})

	bus.Dispatch("ping", WithSource("worker-1"), WithTrace("trace-42"), WithMeta(map[string]any{"retry": true}))
	if got.Source != "worker-1" || got.TraceID != "trace-42" || got.Meta["retry"] != true {
		t.Fatalf("expected dispatch options applied, got %+v", got)
	}
}

func TestScopeDefaultsSourceToScopeName(t *testing.T) {
	bus := New().Scope("worker")
	var got Action[any]
	bus.SubscribeAny(func(act any) error {
		got = act.(Action[any])
		return nil
	})

	bus.Dispatch(Action[any]{Type: "a"})
	if got.Source != "worker" {
		t.Fatalf("expected scoped dispatch to default Source to the scope name, got %q", got.Source)
	}
}
