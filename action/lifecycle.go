package action

import (
	"github.com/fluxkit/fluxkit/reactivity"
)

// Disposable represents a resource that can be disposed to clean up.
type Disposable interface {
	Dispose() error
}

// autoDisposable manages multiple disposables that should be disposed together.
type autoDisposable struct {
	disposables []Disposable
	disposed    bool
}

func newAutoDisposable() *autoDisposable {
	return &autoDisposable{disposables: make([]Disposable, 0)}
}

func (ad *autoDisposable) Add(disposable Disposable) {
	if ad.disposed {
		disposable.Dispose()
		return
	}
	ad.disposables = append(ad.disposables, disposable)
}

func (ad *autoDisposable) Dispose() error {
	if ad.disposed {
		return nil
	}
	ad.disposed = true
	for _, disposable := range ad.disposables {
		disposable.Dispose()
	}
	ad.disposables = nil
	return nil
}

// AutoSubscribe creates a subscription whose lifetime follows the
// caller's scope: inside a reactive effect it is torn down by
// reactivity.OnCleanup like any other effect-scoped resource; outside
// one, it behaves like store.Store.Subscribe itself — the returned
// Disposable is the only thing that ends it, there is no implicit
// mount/unmount hook to defer to.
func AutoSubscribe(subscribeFn func() Disposable) Disposable {
	autoDisp := newAutoDisposable()

	if reactivity.GetCurrentCleanupScope() != nil {
		reactivity.CreateEffect(func() {
			disposable := subscribeFn()
			autoDisp.Add(disposable)
			reactivity.OnCleanup(func() {
				autoDisp.Dispose()
			})
		})
	} else {
		autoDisp.Add(subscribeFn())
	}

	return autoDisp
}

// OnAction subscribes handler to actionType's traffic on bus and, inside
// a reactive scope, disposes the subscription on cleanup; outside one,
// the caller owns the returned Subscription's lifetime directly.
func OnAction[T any](bus Bus, actionType ActionType[T], handler func(Context, T), opts ...SubOption) Subscription {
	subscribe := func() Subscription {
		return bus.Subscribe(actionType.Name, func(act Action[any]) error {
			payload, _ := act.Payload.(T)
			handler(Context{Scope: act.Source, Meta: act.Meta, Time: act.Time, TraceID: act.TraceID, Source: act.Source}, payload)
			return nil
		}, opts...)
	}

	if reactivity.GetCurrentCleanupScope() == nil {
		return subscribe()
	}

	var sub Subscription = &stubSubscription{}
	reactivity.CreateEffect(func() {
		sub = subscribe()
		reactivity.OnCleanup(func() {
			sub.Dispose()
		})
	})
	return sub
}

// stubSubscription is a placeholder returned before the real subscription
// inside CreateEffect's first run has been assigned.
type stubSubscription struct{}

func (s *stubSubscription) Dispose() error { return nil }
func (s *stubSubscription) IsActive() bool { return false }
