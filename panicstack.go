package coro

import (
	"fmt"
	"runtime/debug"
)

// A PanicError is what Resume panics with when a coroutine body panics.
//
// The coroutine that panicked is marked Finished and is never re-entered.
// Stack is the stack trace of the goroutine the body was running on, taken
// at the time of the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if e.Stack == nil {
		return fmt.Sprintf("coro: panic: %v", e.Value)
	}
	return fmt.Sprintf("coro: panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns Value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// newPanicError wraps v with the current stack trace.
// It must be called from the deferred function that recovered v, so that
// the trace still contains the panicking frames.
func newPanicError(v any) *PanicError {
	if pe, ok := v.(*PanicError); ok {
		return pe
	}
	return &PanicError{Value: v, Stack: debug.Stack()}
}

// unwind is the panic value a stackful coroutine is unwound with when it is
// destroyed while suspended. It never escapes the coroutine's trampoline.
type unwind struct{}
