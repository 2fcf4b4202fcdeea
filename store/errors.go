package store

import "fmt"

// ContractViolation is panicked synchronously for programmer errors the
// spec requires to surface immediately: reentrant dispatch, getState
// during a reducer, subscribe/unsubscribe during a reducer, a reducer
// returning an undefined/invalid value, or dispatching a non-action.
type ContractViolation struct {
	Msg string
}

func (e ContractViolation) Error() string { return "store: " + e.Msg }

func violate(format string, args ...any) {
	panic(ContractViolation{Msg: fmt.Sprintf(format, args...)})
}
