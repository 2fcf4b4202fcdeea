package action

// DispatchOption configures one Dispatch call.
type DispatchOption interface {
	applyDispatch(*dispatchOptions)
}

type dispatchOptions struct {
	meta    map[string]any
	source  string
	traceID string
}

// WithMeta merges meta into the dispatched action's metadata.
func WithMeta(meta map[string]any) DispatchOption {
	return metaOption{meta: meta}
}

type metaOption struct{ meta map[string]any }

func (o metaOption) applyDispatch(opts *dispatchOptions) {
	if opts.meta == nil {
		opts.meta = make(map[string]any, len(o.meta))
	}
	for k, v := range o.meta {
		opts.meta[k] = v
	}
}

// WithSource sets the dispatched action's Source field.
func WithSource(source string) DispatchOption {
	return sourceOption{source: source}
}

type sourceOption struct{ source string }

func (o sourceOption) applyDispatch(opts *dispatchOptions) { opts.source = o.source }

// WithTrace sets the dispatched action's TraceID field.
func WithTrace(traceID string) DispatchOption {
	return traceOption{traceID: traceID}
}

type traceOption struct{ traceID string }

func (o traceOption) applyDispatch(opts *dispatchOptions) { opts.traceID = o.traceID }

// SubOption configures one Subscribe/SubscribeAny call.
type SubOption interface {
	applySub(*subOptions)
}

type subOptions struct {
	priority   int
	once       bool
	filter     func(any) bool
	whenSignal interface{ Get() bool }
}

// SubWithPriority sets delivery order among a type's subscribers; higher
// runs first. Ties keep subscription order.
func SubWithPriority(priority int) SubOption {
	return priorityOption{priority: priority}
}

type priorityOption struct{ priority int }

func (o priorityOption) applySub(opts *subOptions) { opts.priority = o.priority }

// SubOnce disposes the subscription after its first delivered action.
func SubOnce() SubOption {
	return onceOption{}
}

type onceOption struct{}

func (o onceOption) applySub(opts *subOptions) { opts.once = true }

// SubFilter skips delivery for actions filter rejects.
func SubFilter(filter func(any) bool) SubOption {
	return filterOption{filter: filter}
}

type filterOption struct{ filter func(any) bool }

func (o filterOption) applySub(opts *subOptions) { opts.filter = o.filter }

// SubWhen gates delivery on a reactive signal: while signal.Get() is
// false, matching actions are dropped rather than queued.
func SubWhen(signal interface{ Get() bool }) SubOption {
	return whenOption{signal: signal}
}

type whenOption struct{ signal interface{ Get() bool } }

func (o whenOption) applySub(opts *subOptions) { opts.whenSignal = o.signal }
