package store

// MiddlewareAPI is the narrow surface a middleware sees: it can dispatch
// (through the rest of the chain) and read state, but never subscribe or
// replace the reducer.
type MiddlewareAPI struct {
	Dispatch DispatchFunc
	GetState func() any
}

// Middleware wraps the next dispatch in the chain. Composition order is
// left to right as passed to ApplyMiddleware: the first middleware sees
// the action first on the way in, last on the way out.
type Middleware func(api MiddlewareAPI) func(next DispatchFunc) DispatchFunc

// Compose combines unary functions right to left: Compose(f, g, h)(x) is
// f(g(h(x))). Zero functions returns the identity.
func Compose(fns ...func(DispatchFunc) DispatchFunc) func(DispatchFunc) DispatchFunc {
	switch len(fns) {
	case 0:
		return func(d DispatchFunc) DispatchFunc { return d }
	case 1:
		return fns[0]
	default:
		return func(d DispatchFunc) DispatchFunc {
			result := d
			for i := len(fns) - 1; i >= 0; i-- {
				result = fns[i](result)
			}
			return result
		}
	}
}

// ApplyMiddleware is the canonical Enhancer: it rewraps the store's
// dispatch through every middleware in order, so later calls to
// store.Dispatch run the full chain instead of going straight to the
// reducer.
func ApplyMiddleware(middlewares ...Middleware) Enhancer {
	return func(next CreateStoreFunc) CreateStoreFunc {
		return func(reducer Reducer, preloadedState any) Store {
			s := next(reducer, preloadedState)

			var chainDispatch DispatchFunc
			dispatch := func(action any) (any, error) { return chainDispatch(action) }

			api := MiddlewareAPI{
				Dispatch: func(action any) (any, error) { return dispatch(action) },
				GetState: s.GetState,
			}

			chain := make([]func(DispatchFunc) DispatchFunc, len(middlewares))
			for i, mw := range middlewares {
				chain[i] = mw(api)
			}
			chainDispatch = Compose(chain...)(s.Dispatch)

			return &middlewareStore{Store: s, dispatch: dispatch}
		}
	}
}

// middlewareStore swaps Dispatch for the middleware-wrapped version while
// delegating GetState/Subscribe/ReplaceReducer to the wrapped store.
type middlewareStore struct {
	Store
	dispatch DispatchFunc
}

func (m *middlewareStore) Dispatch(action any) (any, error) { return m.dispatch(action) }

// Thunk is a function action: instead of a plain Action, a Thunk receives
// dispatch and getState and decides for itself what (if anything) to
// dispatch. ThunkMiddleware unwraps it; without the middleware installed,
// dispatching a Thunk is a ContractViolation (see normalizeAction).
type Thunk func(dispatch DispatchFunc, getState func() any, extra any) (any, error)

// ThunkMiddleware unwraps Thunk actions. extra, when non-nil, is threaded
// through to every thunk's third argument (e.g. an API client or a
// BaseQuery); it is fixed per ThunkMiddleware instance.
func ThunkMiddleware(extra any) Middleware {
	return func(api MiddlewareAPI) func(next DispatchFunc) DispatchFunc {
		return func(next DispatchFunc) DispatchFunc {
			var self DispatchFunc
			self = func(action any) (any, error) {
				if thunk, ok := action.(Thunk); ok {
					return thunk(self, api.GetState, extra)
				}
				if thunk, ok := action.(func(DispatchFunc, func() any, any) (any, error)); ok {
					return Thunk(thunk)(self, api.GetState, extra)
				}
				return next(action)
			}
			return self
		}
	}
}
