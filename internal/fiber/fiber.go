// Package fiber transfers control between a caller and a function running
// on a stack of its own.
//
// A Fiber runs its body on a separate goroutine stack. Switch transfers
// control into the body, which runs until it calls yield or returns; only
// then does Switch return. No two sides ever run at the same time.
package fiber

// Backend selects the mechanism a Fiber switches stacks with.
type Backend int

const (
	// Coro uses iter.Pull, i.e. the runtime's coroutine switch, which hands
	// the current thread directly to another goroutine.
	Coro Backend = iota

	// Goroutine runs the body on an ordinary goroutine and hands control
	// over with channel operations, which go through the scheduler.
	Goroutine
)

// Body is the function a Fiber runs.
// Calling yield transfers control back to the caller of Switch. yield
// returns true when the fiber is switched into again, or false when the
// fiber is being closed, in which case the body must return promptly.
type Body func(yield func() bool)

// A Fiber is an execution context with its own stack.
//
// A Fiber is not safe for concurrent use. Switch and Close must be called
// from outside the body.
type Fiber struct {
	switcher
}

type switcher interface {
	// Switch runs the body until it yields or returns.
	// It reports whether the body is still alive.
	Switch() bool

	// Close unwinds a suspended body and releases its stack.
	Close()

	Done() bool
}

// New prepares a Fiber that runs body. The body does not start until the
// first call to Switch.
func New(b Backend, body Body) *Fiber {
	if body == nil {
		panic("fiber: nil body")
	}
	switch b {
	case Goroutine:
		return &Fiber{newChanFiber(body)}
	default:
		return &Fiber{newPullFiber(body)}
	}
}
