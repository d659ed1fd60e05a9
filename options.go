package coro

import (
	"log/slog"

	"github.com/b97tsk/coro/internal/fiber"
)

// DefaultStackSize is the size of the stack reserved for each stackful
// coroutine unless configured otherwise.
const DefaultStackSize = 64 << 10

// Backend selects how a [Stackful] engine transfers control between
// a coroutine and its resumer.
type Backend int

const (
	// CoroBackend switches between goroutine stacks with the runtime's
	// coroutine switch (the mechanism behind [iter.Pull]).
	// The resumer's goroutine blocks while the coroutine runs on its own
	// stack, and no trip through the scheduler happens.
	CoroBackend Backend = iota

	// GoroutineBackend hands control back and forth over channels between
	// the resumer and a goroutine dedicated to the coroutine.
	// It is slower than CoroBackend and exists for comparison.
	GoroutineBackend
)

func (b Backend) String() string {
	switch b {
	case CoroBackend:
		return "coro"
	case GoroutineBackend:
		return "goroutine"
	}
	return "Backend(?)"
}

func (b Backend) fiber() fiber.Backend {
	if b == GoroutineBackend {
		return fiber.Goroutine
	}
	return fiber.Coro
}

// An Option configures an engine created by [NewStackless] or [NewStackful].
type Option func(o *options)

type options struct {
	capacity  int
	stackSize int
	stacks    StackAllocator
	backend   Backend
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		capacity:  DefaultCapacity,
		stackSize: DefaultStackSize,
		backend:   CoroBackend,
	}
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

func (o *options) log() *slog.Logger {
	if o.logger == nil {
		return discard
	}
	return o.logger
}

var discard = slog.New(slog.DiscardHandler)

// WithCapacity sets the maximum number of live coroutines.
// Zero or a negative number removes the ceiling.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithStackSize sets the size in bytes of the stack reserved for each
// stackful coroutine. Non-positive sizes are ignored.
//
// Stackless engines ignore this option.
func WithStackSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.stackSize = n
		}
	}
}

// WithStackAllocator sets where stackful coroutines get their stacks from.
// By default every [Stackful] engine has its own unlimited [StackArena].
//
// Stackless engines ignore this option.
func WithStackAllocator(a StackAllocator) Option {
	return func(o *options) { o.stacks = a }
}

// WithBackend selects the context transfer mechanism of a [Stackful] engine.
//
// Stackless engines ignore this option.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithLogger sets a logger for lifecycle events (creation, destruction,
// exhaustion). Nothing is logged while resuming or yielding.
// By default nothing is logged at all.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
