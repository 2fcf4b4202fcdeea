package action

import (
	"testing"

	"github.com/fluxkit/fluxkit/reactivity"
)

// TestLifecycle_AutoSubscribeOutsideEffectIsImmediateAndDisposable verifies
// that AutoSubscribe called outside a reactive effect activates right away
// (there is no deferred mount phase) and that Dispose tears it down.
func TestLifecycle_AutoSubscribeOutsideEffectIsImmediateAndDisposable(t *testing.T) {
	bus := New()
	var subscription Subscription
	handlerCalled := false

	disposable := AutoSubscribe(func() Disposable {
		sub := bus.Subscribe("test-action", func(act Action[any]) error {
			handlerCalled = true
			return nil
		})
		subscription = sub
		return sub
	})

	if subscription == nil || !subscription.IsActive() {
		t.Error("Expected subscription to be active immediately outside a reactive scope")
	}

	bus.Dispatch(Action[any]{Type: "test-action"})
	if !handlerCalled {
		t.Error("Expected handler to have been called")
	}

	if err := disposable.Dispose(); err != nil {
		t.Errorf("Expected Dispose to succeed, got error: %v", err)
	}
	if subscription.IsActive() {
		t.Error("Expected subscription to be inactive after disposal")
	}

	if err := disposable.Dispose(); err != nil {
		t.Errorf("Expected multiple Dispose calls to be safe, got error: %v", err)
	}
}

// TestLifecycle_IndependentAutoSubscribesDisposeIndependently verifies that
// two AutoSubscribe calls each own their own subscription lifetime.
func TestLifecycle_IndependentAutoSubscribesDisposeIndependently(t *testing.T) {
	bus := New()
	var firstSubscription, secondSubscription Subscription

	firstDisposable := AutoSubscribe(func() Disposable {
		sub := bus.Subscribe("test-action", func(act Action[any]) error { return nil })
		firstSubscription = sub
		return sub
	})

	secondDisposable := AutoSubscribe(func() Disposable {
		sub := bus.Subscribe("test-action", func(act Action[any]) error { return nil })
		secondSubscription = sub
		return sub
	})

	if !firstSubscription.IsActive() || !secondSubscription.IsActive() {
		t.Error("Expected both subscriptions active before either is disposed")
	}

	firstDisposable.Dispose()
	if firstSubscription.IsActive() {
		t.Error("Expected first subscription to be inactive after its own disposal")
	}
	if !secondSubscription.IsActive() {
		t.Error("Expected second subscription to remain active after first's disposal")
	}

	secondDisposable.Dispose()
	if secondSubscription.IsActive() {
		t.Error("Expected second subscription to be inactive after disposal")
	}
}

// TestSubWhen_StopsListeningWhenSignalFalseAndResumesTrue verifies that
// SubWhen gates delivery based on a reactive signal.
func TestSubWhen_StopsListeningWhenSignalFalseAndResumesTrue(t *testing.T) {
	bus := New()
	gateSignal := reactivity.CreateSignal(true)
	var received []string

	sub := bus.Subscribe("test-action", func(act Action[any]) error {
		received = append(received, act.Payload.(string))
		return nil
	}, SubWhen(gateSignal))

	bus.Dispatch(Action[any]{Type: "test-action", Payload: "first-true-payload"})
	if len(received) != 1 || received[0] != "first-true-payload" {
		t.Errorf("Expected to receive first action when signal is true, got: %v", received)
	}

	gateSignal.Set(false)
	bus.Dispatch(Action[any]{Type: "test-action", Payload: "false-payload"})
	if len(received) != 1 {
		t.Errorf("Expected to still have only 1 action when signal is false, got: %v", received)
	}

	gateSignal.Set(true)
	bus.Dispatch(Action[any]{Type: "test-action", Payload: "second-true-payload"})
	if len(received) != 2 || received[1] != "second-true-payload" {
		t.Errorf("Expected to receive second true action, got: %v", received)
	}

	sub.Dispose()
}

// TestNoLeak_MultipleMountUnmountCycles verifies there is no leak under
// repeated subscribe/dispose cycles.
func TestNoLeak_MultipleMountUnmountCycles(t *testing.T) {
	bus := New()
	var subscriptions []Subscription
	handlerCalledCount := 0

	for i := 0; i < 5; i++ {
		sub := bus.Subscribe("test-action", func(act Action[any]) error {
			handlerCalledCount++
			return nil
		})
		subscriptions = append(subscriptions, sub)
	}

	for i, sub := range subscriptions {
		if !sub.IsActive() {
			t.Errorf("Expected subscription %d to be active", i)
		}
	}

	bus.Dispatch(Action[any]{Type: "test-action", Payload: "test-payload"})
	if handlerCalledCount != 5 {
		t.Errorf("Expected 5 handlers to be called, got %d", handlerCalledCount)
	}

	for _, sub := range subscriptions {
		if err := sub.Dispose(); err != nil {
			t.Errorf("Expected Dispose to succeed, got error: %v", err)
		}
	}

	for i, sub := range subscriptions {
		if sub.IsActive() {
			t.Errorf("Expected subscription %d to be inactive after disposal", i)
		}
	}

	oldCount := handlerCalledCount
	bus.Dispatch(Action[any]{Type: "test-action", Payload: "test-payload-2"})
	if handlerCalledCount != oldCount {
		t.Errorf("Expected handler count to remain the same after disposal, got %d", handlerCalledCount)
	}

	for _, sub := range subscriptions {
		if err := sub.Dispose(); err != nil {
			t.Errorf("Expected multiple Dispose calls to be safe, got error: %v", err)
		}
	}
}
