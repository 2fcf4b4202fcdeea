package store

import (
	"time"

	"github.com/fluxkit/fluxkit/metrics"
)

// MetricsMiddleware records fluxkit_store_dispatch_total and
// fluxkit_store_reducer_duration_seconds around every plain action that
// reaches the base store's dispatch. reg may be nil, in which case this
// middleware degrades to a pass-through (Registry's Observe* methods are
// themselves nil-safe).
func MetricsMiddleware(reg *metrics.Registry) Middleware {
	return func(api MiddlewareAPI) func(next DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			return func(action any) (any, error) {
				act, isAction := action.(Action)
				start := time.Now()
				result, err := next(action)
				if isAction {
					reg.ObserveDispatch(act.Type)
					reg.ObserveReducerDuration(time.Since(start).Seconds())
				}
				return result, err
			}
		}
	}
}
