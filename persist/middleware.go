package persist

import "github.com/fluxkit/fluxkit/store"

// MiddlewareConfig configures the control-action middleware. ActionFilter
// takes priority over Types when both are set.
type MiddlewareConfig struct {
	Key          string
	Storage      Storage
	ActionFilter func(store.Action) bool
	Types        []string
}

func (cfg MiddlewareConfig) matcher() func(store.Action) bool {
	if cfg.ActionFilter != nil {
		return cfg.ActionFilter
	}
	if len(cfg.Types) > 0 {
		set := make(map[string]bool, len(cfg.Types))
		for _, t := range cfg.Types {
			set[t] = true
		}
		return func(a store.Action) bool { return set[a.Type] }
	}
	return nil
}

// Middleware recognizes the PERSIST_PAUSE/RESUME/PURGE/FLUSH control
// actions and maps them onto the shared Controller for cfg.Key. When a
// filter (ActionFilter or Types) is configured, matching actions flush
// immediately after the reducer runs and non-matching actions run with
// writes paused, so the reducer still executes but no debounced write is
// scheduled for them (spec.md §4.11).
func Middleware(cfg MiddlewareConfig) store.Middleware {
	ctrl := GetController(cfg.Key, cfg.Storage)
	matches := cfg.matcher()

	return func(api store.MiddlewareAPI) func(store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action any) (any, error) {
				a, ok := action.(store.Action)
				if !ok {
					return next(action)
				}
				switch a.Type {
				case PauseType:
					ctrl.Pause()
					return next(action)
				case ResumeType:
					ctrl.Resume()
					return next(action)
				case FlushType:
					res, err := next(action)
					ctrl.Flush()
					return res, err
				case PurgeType:
					res, err := next(action)
					ctrl.Purge()
					return res, err
				}
				if matches == nil {
					return next(action)
				}
				if matches(a) {
					res, err := next(action)
					ctrl.Flush()
					return res, err
				}
				ctrl.Pause()
				res, err := next(action)
				ctrl.Resume()
				return res, err
			}
		}
	}
}
