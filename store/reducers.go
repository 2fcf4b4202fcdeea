package store

import (
	"encoding/json"
	"reflect"
)

// CombineReducers turns a map of slice reducers into a single Reducer
// operating over map[string]any, the way redux's combineReducers turns a
// shape of reducers into one. Each sub-reducer is invoked with its own
// slice of state (nil on first call, i.e. for @@INIT) and its own slice
// of the returned map is only replaced when it changes, so unaffected
// branches keep their identity across dispatches (needed for selector
// memoization, §4.4).
func CombineReducers(reducers map[string]Reducer) Reducer {
	keys := make([]string, 0, len(reducers))
	for k := range reducers {
		keys = append(keys, k)
	}
	return func(state any, action Action) any {
		prev, _ := state.(map[string]any)
		next := make(map[string]any, len(keys))
		changed := prev == nil
		for _, k := range keys {
			var sub any
			if prev != nil {
				sub = prev[k]
			}
			nextSub := reducers[k](sub, action)
			if nextSub == nil {
				violate("reducer for key %q returned an undefined state for action %q", k, action.Type)
			}
			if reflect.DeepEqual(sub, nextSub) {
				next[k] = sub
			} else {
				next[k] = nextSub
				changed = true
			}
		}
		if !changed && prev != nil {
			return prev
		}
		return next
	}
}

// CreateReducer builds a Reducer for a concrete state type S from a map
// of action-type to draft mutators, Immer-style: the mutator receives a
// pointer to a deep copy of the current state and may mutate it in
// place; CreateReducer diffs the draft against the original afterward and
// returns the original (same pointer identity where possible) when
// nothing changed, or the mutated draft otherwise.
func CreateReducer[S any](initialState S, builders map[string]func(draft *S, action Action)) Reducer {
	return func(state any, action Action) any {
		var current S
		if state == nil {
			current = initialState
		} else {
			s, ok := state.(S)
			if !ok {
				violate("reducer: state of type %T is not assignable to %T", state, current)
			}
			current = s
		}

		builder, ok := builders[action.Type]
		if !ok {
			return current
		}

		draft := copyState(current)
		builder(&draft, action)
		if reflect.DeepEqual(current, draft) {
			return current
		}
		return draft
	}
}

// copyState deep-copies a state value via JSON round-trip. This is the
// dependency-free way every teacher/pack repo reaches for ad hoc value
// copying; a true structural clone would need a generics-aware deep-copy library
// none of the examples import.
func copyState[S any](v S) S {
	buf, err := json.Marshal(v)
	if err != nil {
		violate("reducer: state of type %T is not JSON-copyable: %v", v, err)
	}
	var out S
	if err := json.Unmarshal(buf, &out); err != nil {
		violate("reducer: state of type %T failed draft round-trip: %v", v, err)
	}
	return out
}

// ActionCreator builds a well-typed Action for one slice case reducer.
type ActionCreator func(payload any) Action

// CaseReducer is one slice case: a draft mutator keyed by its bare name
// (the slice prefixes it with "<name>/" to form the dispatched type).
type CaseReducer[S any] func(draft *S, action Action)

// Slice bundles a generated Reducer with one ActionCreator per case,
// mirroring redux-toolkit's createSlice.
type Slice[S any] struct {
	Name         string
	Reducer      Reducer
	Actions      map[string]ActionCreator
	InitialState S
}

// SliceConfig is the input to CreateSlice.
type SliceConfig[S any] struct {
	Name          string
	InitialState  S
	Reducers      map[string]CaseReducer[S]
	ExtraReducers func(b *ExtraReducerBuilder[S])
}

// ExtraReducerBuilder lets a slice react to actions dispatched by other
// slices or by async thunks (§4.6), the way redux-toolkit's
// builder.addCase/addMatcher does.
type ExtraReducerBuilder[S any] struct {
	cases    map[string]CaseReducer[S]
	matchers []matcherEntry[S]
	fallback CaseReducer[S]
}

type matcherEntry[S any] struct {
	predicate func(Action) bool
	reducer   CaseReducer[S]
}

func (b *ExtraReducerBuilder[S]) AddCase(actionType string, reducer CaseReducer[S]) *ExtraReducerBuilder[S] {
	if b.cases == nil {
		b.cases = make(map[string]CaseReducer[S])
	}
	b.cases[actionType] = reducer
	return b
}

func (b *ExtraReducerBuilder[S]) AddMatcher(predicate func(Action) bool, reducer CaseReducer[S]) *ExtraReducerBuilder[S] {
	b.matchers = append(b.matchers, matcherEntry[S]{predicate: predicate, reducer: reducer})
	return b
}

func (b *ExtraReducerBuilder[S]) AddDefaultCase(reducer CaseReducer[S]) *ExtraReducerBuilder[S] {
	b.fallback = reducer
	return b
}

// CreateSlice generates a Reducer covering both this slice's own cases
// (dispatched under "<name>/<case>") and any extra cases/matchers wired
// via ExtraReducers, applying the same draft/diff semantics as
// CreateReducer.
func CreateSlice[S any](cfg SliceConfig[S]) Slice[S] {
	actions := make(map[string]ActionCreator, len(cfg.Reducers))
	builders := make(map[string]func(draft *S, action Action), len(cfg.Reducers))

	for caseName, reducer := range cfg.Reducers {
		actionType := cfg.Name + "/" + caseName
		reducer := reducer
		builders[actionType] = func(draft *S, action Action) { reducer(draft, action) }
		actions[caseName] = func(payload any) Action {
			return Action{Type: actionType, Payload: payload}
		}
	}

	var extra ExtraReducerBuilder[S]
	if cfg.ExtraReducers != nil {
		cfg.ExtraReducers(&extra)
	}
	for actionType, reducer := range extra.cases {
		reducer := reducer
		builders[actionType] = func(draft *S, action Action) { reducer(draft, action) }
	}

	reducer := func(state any, action Action) any {
		var current S
		if state == nil {
			current = cfg.InitialState
		} else {
			s, ok := state.(S)
			if !ok {
				violate("slice %q: state of type %T is not assignable to %T", cfg.Name, state, current)
			}
			current = s
		}

		if builder, ok := builders[action.Type]; ok {
			draft := copyState(current)
			builder(&draft, action)
			if reflect.DeepEqual(current, draft) {
				return current
			}
			return draft
		}

		for _, m := range extra.matchers {
			if m.predicate(action) {
				draft := copyState(current)
				m.reducer(&draft, action)
				if reflect.DeepEqual(current, draft) {
					return current
				}
				return draft
			}
		}

		if extra.fallback != nil {
			draft := copyState(current)
			extra.fallback(&draft, action)
			if reflect.DeepEqual(current, draft) {
				return current
			}
			return draft
		}

		return current
	}

	return Slice[S]{Name: cfg.Name, Reducer: reducer, Actions: actions, InitialState: cfg.InitialState}
}

// MustAction panics with a ContractViolation describing the bad action;
// used by packages built on top of store (asyncthunk, query) that accept
// arbitrary actions from user code and must fail loudly on malformed
// ones rather than silently ignoring them.
func MustAction(cond bool, format string, args ...any) {
	if !cond {
		violate(format, args...)
	}
}
