// Package action is a lightweight pub/sub bus for store.Action traffic:
// something a devtools sink, a metrics collector, and a relay (NATSRelay)
// can all attach to independently, instead of each one instrumenting the
// store directly. StoreEnhancer is the usual way actions end up on
// a Bus in the first place (see store_enhancer.go).
package action

import (
	"sort"
	"sync"
	"time"
)

// Bus is the action pub/sub surface: Dispatch publishes, Subscribe and
// SubscribeAny register handlers, Scope namespaces a sub-bus, and
// OnError observes handler failures bus-wide.
type Bus interface {
	// Dispatch publishes action to every matching subscriber. action may
	// be an Action[any] (passed through, augmented with opts), a bare
	// string (becomes Action[any]{Type: action}), or any other value
	// (becomes Action[any]{Type: "unknown", Payload: action}).
	Dispatch(action any, opts ...DispatchOption) error

	// Subscribe registers handler for actions whose Type equals
	// actionType.
	Subscribe(actionType string, handler func(Action[any]) error, opts ...SubOption) Subscription

	// SubscribeAny registers handler for every dispatched action.
	SubscribeAny(handler func(any) error, opts ...SubOption) Subscription

	// Scope returns a namespaced Bus: every action it dispatches gets
	// Source defaulted to name when the caller didn't set one. Scoped
	// buses have independent subscriber lists from their parent.
	Scope(name string) Bus

	// OnError registers a handler invoked whenever a subscriber's
	// handler returns an error or panics.
	OnError(handler func(err error, act Action[any])) Subscription
}

// busImpl is the default Bus implementation.
type busImpl struct {
	mu          sync.RWMutex
	scopeName   string
	subscribers map[string][]*subscriptionEntry
	anyHandlers []*subscriptionEntry
	errorSubs   []*subscriptionEntry
	nextID      uint64
}

type subscriptionEntry struct {
	bus      *busImpl
	id       uint64
	group    string // action type, "" for anyHandlers/errorSubs
	priority int
	once     bool
	filter   func(any) bool
	when     interface{ Get() bool }

	mu     sync.Mutex
	active bool

	anyHandler   func(any) error
	typedHandler func(Action[any]) error
	errorHandler func(err error, act Action[any])
}

// New creates an independent, empty Bus.
func New() Bus {
	return &busImpl{
		subscribers: make(map[string][]*subscriptionEntry),
	}
}

func (b *busImpl) Scope(name string) Bus {
	return &busImpl{
		scopeName:   name,
		subscribers: make(map[string][]*subscriptionEntry),
	}
}

func (b *busImpl) Dispatch(action any, opts ...DispatchOption) error {
	dispatchOpts := &dispatchOptions{}
	for _, opt := range opts {
		opt.applyDispatch(dispatchOpts)
	}

	act := toAction(action)
	if act.Time.IsZero() {
		act.Time = time.Now()
	}
	if act.Source == "" {
		act.Source = dispatchOpts.source
	}
	if act.Source == "" {
		act.Source = b.scopeName
	}
	if act.TraceID == "" {
		act.TraceID = dispatchOpts.traceID
	}
	if len(dispatchOpts.meta) > 0 {
		if act.Meta == nil {
			act.Meta = make(map[string]any, len(dispatchOpts.meta))
		}
		for k, v := range dispatchOpts.meta {
			if _, exists := act.Meta[k]; !exists {
				act.Meta[k] = v
			}
		}
	}

	return b.deliver(act)
}

func toAction(action any) Action[any] {
	switch a := action.(type) {
	case Action[any]:
		return a
	case string:
		return Action[any]{Type: a}
	default:
		return Action[any]{Type: "unknown", Payload: a}
	}
}

func (b *busImpl) deliver(act Action[any]) error {
	b.mu.RLock()
	handlers := append([]*subscriptionEntry(nil), b.subscribers[act.Type]...)
	handlers = append(handlers, b.anyHandlers...)
	errorSubs := append([]*subscriptionEntry(nil), b.errorSubs...)
	b.mu.RUnlock()

	sort.SliceStable(handlers, func(i, j int) bool { return handlers[i].priority > handlers[j].priority })

	for _, entry := range handlers {
		if entry.tryDeliver(act, errorSubs) && entry.once {
			entry.Dispose()
		}
	}
	return nil
}

// tryDeliver runs the entry's handler if it is active and passes the
// entry's filter/when gates, recovering a panic into the bus's error
// subscribers rather than letting it unwind into the dispatcher.
func (e *subscriptionEntry) tryDeliver(act Action[any], errorSubs []*subscriptionEntry) (delivered bool) {
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	if !active {
		return false
	}
	if e.when != nil && !e.when.Get() {
		return false
	}
	if e.filter != nil && !e.filter(act) {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			notifyError(errorSubs, &panicError{value: r}, act)
		}
	}()

	var err error
	if e.typedHandler != nil {
		err = e.typedHandler(act)
	} else {
		err = e.anyHandler(act)
	}
	if err != nil {
		notifyError(errorSubs, err, act)
	}
	return true
}

func notifyError(errorSubs []*subscriptionEntry, err error, act Action[any]) {
	for _, sub := range errorSubs {
		sub.mu.Lock()
		active := sub.active
		sub.mu.Unlock()
		if active {
			sub.errorHandler(err, act)
		}
	}
}

func (b *busImpl) Subscribe(actionType string, handler func(Action[any]) error, opts ...SubOption) Subscription {
	entry := b.newEntry(actionType, opts...)
	entry.typedHandler = handler
	b.mu.Lock()
	b.subscribers[actionType] = append(b.subscribers[actionType], entry)
	b.mu.Unlock()
	return entry
}

func (b *busImpl) SubscribeAny(handler func(any) error, opts ...SubOption) Subscription {
	entry := b.newEntry("", opts...)
	entry.anyHandler = handler
	b.mu.Lock()
	b.anyHandlers = append(b.anyHandlers, entry)
	b.mu.Unlock()
	return entry
}

func (b *busImpl) OnError(handler func(err error, act Action[any])) Subscription {
	entry := b.newEntry("")
	entry.errorHandler = handler
	b.mu.Lock()
	b.errorSubs = append(b.errorSubs, entry)
	b.mu.Unlock()
	return entry
}

func (b *busImpl) newEntry(group string, opts ...SubOption) *subscriptionEntry {
	subOpts := &subOptions{}
	for _, opt := range opts {
		opt.applySub(subOpts)
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.mu.Unlock()
	return &subscriptionEntry{
		bus:      b,
		id:       id,
		group:    group,
		priority: subOpts.priority,
		once:     subOpts.once,
		filter:   subOpts.filter,
		when:     subOpts.whenSignal,
		active:   true,
	}
}

func (e *subscriptionEntry) Dispose() error {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return nil
	}
	e.active = false
	e.mu.Unlock()

	b := e.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case e.errorHandler != nil:
		b.errorSubs = removeEntry(b.errorSubs, e)
	case e.anyHandler != nil:
		b.anyHandlers = removeEntry(b.anyHandlers, e)
	default:
		b.subscribers[e.group] = removeEntry(b.subscribers[e.group], e)
	}
	return nil
}

func (e *subscriptionEntry) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func removeEntry(list []*subscriptionEntry, target *subscriptionEntry) []*subscriptionEntry {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}
