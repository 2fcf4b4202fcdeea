package action

import "errors"

// Predefined errors for the action bus.
var (
	// ErrDisposed describes use of a disposed subscription. No function
	// in this package returns it: disposing twice is a no-op.
	ErrDisposed = errors.New("action: subscription has been disposed")
)

// panicError wraps a recovered panic value so a handler's OnError
// consumer sees a normal error rather than having to type-switch on any.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return "action: handler panicked"
}
