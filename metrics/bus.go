package metrics

import "github.com/fluxkit/fluxkit/action"

// AttachBus subscribes reg to every action flowing through bus — typically
// one mirrored there by action.StoreEnhancer — recording a dispatch count
// the same way store.MetricsMiddleware does for actions dispatched
// directly through a store. A NATSRelay and AttachBus can both Attach to
// the same bus without either affecting the other's view of traffic,
// which is the point of mirroring onto a bus in the first place: one
// store.Enhancer, many independent consumers.
func AttachBus(bus action.Bus, reg *Registry) action.Subscription {
	return bus.SubscribeAny(func(act any) error {
		if a, ok := act.(action.Action[any]); ok {
			reg.ObserveDispatch(a.Type)
		}
		return nil
	})
}
