package action

import (
	"time"
)

// ActionType represents a typed action identifier with a stable name.
type ActionType[T any] struct {
	Name string
}

// DefineAction creates a new ActionType with the given name. The name
// should be unique within the application to avoid conflicts.
func DefineAction[T any](name string) ActionType[T] {
	return ActionType[T]{Name: name}
}

// Action is the envelope every bus message travels in: the same
// Type/Payload/Meta shape store.Action uses, plus the bus-specific
// bookkeeping (Time/Source/TraceID) a relay or devtools consumer wants.
type Action[T any] struct {
	Type    string
	Payload T
	Meta    map[string]any
	Time    time.Time
	Source  string
	TraceID string
}

// Context carries the ambient fields a dispatch option can set before an
// action reaches a handler.
type Context struct {
	Scope   string
	Meta    map[string]any
	Time    time.Time
	TraceID string
	Source  string
}

// MetaWith returns a copy of c with key set in its metadata.
func (c Context) MetaWith(key string, value any) Context {
	newMeta := make(map[string]any, len(c.Meta)+1)
	for k, v := range c.Meta {
		newMeta[k] = v
	}
	newMeta[key] = value
	return Context{Scope: c.Scope, Meta: newMeta, Time: c.Time, TraceID: c.TraceID, Source: c.Source}
}

// MetaValue reads key out of c's metadata.
func (c Context) MetaValue(key string) (any, bool) {
	if c.Meta == nil {
		return nil, false
	}
	v, ok := c.Meta[key]
	return v, ok
}
