// Package selector memoizes derived state the way reselect does: a
// selector recomputes only when its input selectors' results actually
// change, so repeated calls with an unchanged slice of state return the
// exact same result value (useful for components that skip re-rendering
// on referential equality).
package selector

import "reflect"

// Selector reads R out of state S.
type Selector[S any, R any] func(state S) R

// EqualityFn decides whether two input-selector results should be
// treated as unchanged. The default, Equal, mirrors the teacher's
// reactivity.CreateMemo, which uses reflect.DeepEqual rather than
// pointer identity — Go has no safe generic "===" over arbitrary types,
// and DeepEqual is the grounded, dependency-free stand-in the pack uses
// everywhere for this kind of comparison.
type EqualityFn func(a, b any) bool

// Equal is the default EqualityFn.
func Equal(a, b any) bool { return reflect.DeepEqual(a, b) }

type memoized[S any, R any] struct {
	inputs   []func(S) any
	combine  func([]any) R
	equal    EqualityFn
	hasLast  bool
	lastArgs []any
	lastOut  R
}

func (m *memoized[S, R]) call(state S) R {
	args := make([]any, len(m.inputs))
	for i, in := range m.inputs {
		args[i] = in(state)
	}
	if m.hasLast && sameArgs(m.lastArgs, args, m.equal) {
		return m.lastOut
	}
	out := m.combine(args)
	m.lastArgs = args
	m.lastOut = out
	m.hasLast = true
	return out
}

func sameArgs(a, b []any, eq EqualityFn) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Option configures a selector built with CreateSelector.
type Option func(*options)

type options struct{ equal EqualityFn }

// WithEqualityFn overrides the default DeepEqual comparison, e.g. to use
// a cheap pointer-identity check for inputs known to be immutable.
func WithEqualityFn(fn EqualityFn) Option {
	return func(o *options) { o.equal = fn }
}

func resolveOptions(opts []Option) options {
	o := options{equal: Equal}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// CreateSelector1 memoizes a single-input derived selector.
func CreateSelector1[S, A, R any](in1 Selector[S, A], combine func(A) R, opts ...Option) Selector[S, R] {
	o := resolveOptions(opts)
	m := &memoized[S, R]{
		inputs:  []func(S) any{func(s S) any { return in1(s) }},
		combine: func(args []any) R { return combine(args[0].(A)) },
		equal:   o.equal,
	}
	return m.call
}

// CreateSelector2 memoizes a two-input derived selector.
func CreateSelector2[S, A, B, R any](in1 Selector[S, A], in2 Selector[S, B], combine func(A, B) R, opts ...Option) Selector[S, R] {
	o := resolveOptions(opts)
	m := &memoized[S, R]{
		inputs: []func(S) any{
			func(s S) any { return in1(s) },
			func(s S) any { return in2(s) },
		},
		combine: func(args []any) R { return combine(args[0].(A), args[1].(B)) },
		equal:   o.equal,
	}
	return m.call
}

// CreateSelector3 memoizes a three-input derived selector.
func CreateSelector3[S, A, B, C, R any](in1 Selector[S, A], in2 Selector[S, B], in3 Selector[S, C], combine func(A, B, C) R, opts ...Option) Selector[S, R] {
	o := resolveOptions(opts)
	m := &memoized[S, R]{
		inputs: []func(S) any{
			func(s S) any { return in1(s) },
			func(s S) any { return in2(s) },
			func(s S) any { return in3(s) },
		},
		combine: func(args []any) R { return combine(args[0].(A), args[1].(B), args[2].(C)) },
		equal:   o.equal,
	}
	return m.call
}

// CreateSelector4 memoizes a four-input derived selector.
func CreateSelector4[S, A, B, C, D, R any](in1 Selector[S, A], in2 Selector[S, B], in3 Selector[S, C], in4 Selector[S, D], combine func(A, B, C, D) R, opts ...Option) Selector[S, R] {
	o := resolveOptions(opts)
	m := &memoized[S, R]{
		inputs: []func(S) any{
			func(s S) any { return in1(s) },
			func(s S) any { return in2(s) },
			func(s S) any { return in3(s) },
			func(s S) any { return in4(s) },
		},
		combine: func(args []any) R { return combine(args[0].(A), args[1].(B), args[2].(C), args[3].(D)) },
		equal:   o.equal,
	}
	return m.call
}

// CreateStructuredSelector builds one selector per map entry and
// combines their outputs into a map[string]any result, memoized as a
// whole the way reselect's createStructuredSelector does: the returned
// map keeps its identity as long as every field selector's result is
// unchanged, and a call with a state equal to the previous call's
// returns the previous map without running the field selectors.
func CreateStructuredSelector[S any](fields map[string]Selector[S, any], opts ...Option) Selector[S, map[string]any] {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	o := resolveOptions(opts)
	inputs := make([]func(S) any, len(keys))
	for i, k := range keys {
		sel := fields[k]
		inputs[i] = func(s S) any { return sel(s) }
	}
	m := &memoized[S, map[string]any]{
		inputs: inputs,
		combine: func(args []any) map[string]any {
			out := make(map[string]any, len(keys))
			for i, k := range keys {
				out[k] = args[i]
			}
			return out
		},
		equal: o.equal,
	}
	var lastState S
	hasState := false
	return func(state S) map[string]any {
		if hasState && m.hasLast && o.equal(lastState, state) {
			return m.lastOut
		}
		lastState, hasState = state, true
		return m.call(state)
	}
}
