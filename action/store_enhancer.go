package action

import (
	"github.com/fluxkit/fluxkit/store"
)

// StoreEnhancer mirrors every dispatched store.Action onto bus as an
// Action[any], so a single bus subscriber (devtools, metrics, a
// NATSRelay) observes both plain store actions and asyncthunk's
// pending/fulfilled/rejected/settled lifecycle actions without wiring
// into the store directly.
//
// Compose it closest to the base store, underneath ApplyMiddleware, so
// it only ever sees actions the thunk middleware has already unwrapped
// into a plain store.Action, never a raw store.Thunk:
//
//	store.CreateStore(reducer, nil, store.ComposeEnhancers(
//		store.ApplyMiddleware(store.ThunkMiddleware(nil)),
//		action.StoreEnhancer(bus),
//	))
func StoreEnhancer(bus Bus) store.Enhancer {
	return func(next store.CreateStoreFunc) store.CreateStoreFunc {
		return func(reducer store.Reducer, preloadedState any) store.Store {
			s := next(reducer, preloadedState)
			return &mirroringStore{Store: s, bus: bus}
		}
	}
}

// mirroringStore delegates everything to the wrapped store and mirrors
// each dispatched action onto a Bus on the way out.
type mirroringStore struct {
	store.Store
	bus Bus
}

func (m *mirroringStore) Dispatch(actionVal any) (any, error) {
	result, err := m.Store.Dispatch(actionVal)
	if err != nil {
		return result, err
	}
	if sa, ok := result.(store.Action); ok {
		_ = m.bus.Dispatch(Action[any]{
			Type:    sa.Type,
			Payload: sa.Payload,
			Meta:    sa.Meta,
		})
	}
	return result, err
}
