package coro

import (
	"log/slog"

	"github.com/b97tsk/coro/internal/fiber"
)

// A StackfulFunc is the body of a stackful coroutine.
//
// The body runs on a stack of its own and may call [Stackful.Yield] at any
// call depth. When the body returns, the coroutine is Finished.
type StackfulFunc func(arg any)

// thread is a stackful coroutine.
type thread struct {
	id      ID
	state   State
	fn      StackfulFunc
	arg     any
	stack   []byte
	fiber   *fiber.Fiber
	yield   func() bool
	resumer *thread // Coroutine that resumed this one, or nil for the caller.
	doomed  bool    // Destroyed while running.
}

// Stackful is an engine for stackful coroutines.
//
// Each stackful coroutine runs on a stack of its own, which is preserved
// across yields, so a coroutine can yield from any depth of nested calls.
// Every suspend and resume is a full context transfer between the
// coroutine's stack and the resumer's, which makes it markedly slower than
// resuming a [Stackless] coroutine.
//
// Besides the execution stack, every coroutine owns a fixed-size stack
// reservation obtained from the engine's [StackAllocator] when the coroutine
// is created and given back exactly once when it is destroyed.
//
// The zero value for Stackful is ready to use, with default options.
// A Stackful must not be used by more than one goroutine at a time.
type Stackful struct {
	pool    pool
	threads []*thread
	current *thread
	opts    options
	inited  bool
	custom  bool
}

// NewStackful creates a [Stackful] engine configured by opts.
func NewStackful(opts ...Option) *Stackful {
	e := &Stackful{opts: defaultOptions(), custom: true}
	e.opts.apply(opts)
	e.Init()
	return e
}

// Init prepares e for use. It does nothing if e is already initialized.
// Create calls Init automatically.
func (e *Stackful) Init() {
	if e.inited {
		return
	}
	if !e.custom {
		e.opts = defaultOptions()
		e.custom = true
	}
	if e.opts.stacks == nil {
		e.opts.stacks = NewStackArena(0)
	}
	e.pool.init(e.opts.capacity)
	clear(e.threads)
	e.threads = e.threads[:0]
	e.inited = true
}

// Create creates a coroutine that runs fn with arg on a stack of its own.
// The coroutine does not run until it is resumed.
//
// Create returns [ErrPoolExhausted] if e already holds as many coroutines as
// its capacity allows, and an error wrapping [ErrAllocationFailed] if no
// stack could be obtained. Either way, nothing is left behind.
func (e *Stackful) Create(fn StackfulFunc, arg any) (ID, error) {
	if fn == nil {
		panic("coro: nil StackfulFunc")
	}

	e.Init()

	log := e.opts.log()

	id, ok := e.pool.acquire()
	if !ok {
		log.Warn("coro: maximum coroutines reached", slog.String("engine", "stackful"), slog.Int("capacity", e.opts.capacity))
		return NoID, exhausted(e.opts.capacity)
	}

	stack, err := e.opts.stacks.AllocStack(e.opts.stackSize)
	if err == nil && stack == nil {
		err = ErrAllocationFailed
	}
	if err != nil {
		e.pool.release(id)
		log.Warn("coro: failed to allocate coroutine stack", slog.Int("size", e.opts.stackSize), slog.Any("error", err))
		return NoID, wrapAllocationFailed(err)
	}

	t := &thread{
		id:    id,
		state: Init,
		fn:    fn,
		arg:   arg,
		stack: stack,
	}
	t.fiber = fiber.New(e.opts.backend.fiber(), e.trampoline(t))

	if int(id) == len(e.threads) {
		e.threads = append(e.threads, t)
	} else {
		e.threads[id] = t
	}

	log.Debug("coro: created", slog.String("engine", "stackful"), slog.Int("id", int(id)), slog.Int("stack", len(stack)))

	return id, nil
}

// trampoline returns the entry point of t's fiber: it runs the body, marks
// t Finished, and lets the fiber hand control back to whoever resumed t.
func (e *Stackful) trampoline(t *thread) fiber.Body {
	return func(yield func() bool) {
		t.yield = yield
		returned := false
		defer func() {
			t.state = Finished
			if returned {
				return
			}
			switch v := recover(); v.(type) {
			case nil: // runtime.Goexit
			case unwind:
			default:
				panic(newPanicError(v))
			}
		}()
		t.fn(t.arg)
		returned = true
	}
}

func (e *Stackful) thread(id ID) (*thread, bool) {
	if !e.pool.isLive(id) {
		return nil, false
	}
	return e.threads[id], true
}

// Resume transfers control to the coroutine identified by id and waits for
// it to yield or end.
//
// Resume returns [Ended] without switching if the coroutine has already
// finished, [ErrInvalidID] if id does not denote a live coroutine, and
// [ErrRunning] if the coroutine is running already, i.e. it is the caller
// or one of the coroutines the caller was resumed from.
//
// A coroutine may resume another one of e. The resumer stays Running until
// the nested Resume returns, so Running marks every coroutine on the chain
// of active Resume calls, not only the innermost one. When the coroutine
// yields or ends, the resumer becomes the running coroutine again.
//
// If the body panics, the coroutine is marked Finished and Resume panics
// with a [*PanicError].
func (e *Stackful) Resume(id ID) (Status, error) {
	t, ok := e.thread(id)
	if !ok {
		return Yielded, invalidID(id)
	}

	switch t.state {
	case Finished:
		return Ended, nil
	case Running:
		return Yielded, ErrRunning
	}

	t.resumer = e.current
	e.current = t
	t.state = Running

	switched := false
	defer func() {
		if !switched {
			e.current = t.resumer
			t.resumer = nil
			t.state = Finished
			if t.doomed {
				e.teardown(t)
			}
			if v := recover(); v != nil {
				panic(newPanicError(v))
			}
		}
	}()

	t.fiber.Switch()
	switched = true

	e.current = t.resumer
	t.resumer = nil

	if t.doomed {
		e.teardown(t)
		return Ended, nil
	}

	switch t.state {
	case Finished:
		return Ended, nil
	case Running:
		t.state = Suspended
	}

	return Yielded, nil
}

// Yield suspends the running coroutine of e and transfers control back to
// the Resume call that is running it.
// Yield returns when the coroutine is resumed again.
//
// Yield may be called at any call depth of a coroutine body. It does nothing
// when called while no coroutine of e is running.
//
// If the coroutine is destroyed while suspended, Yield does not return;
// the coroutine's stack is unwound instead, running deferred calls.
func (e *Stackful) Yield() {
	t := e.current
	if t == nil || t.yield == nil {
		return
	}
	t.state = Suspended
	if !t.yield() {
		panic(unwind{})
	}
}

// Destroy releases the coroutine identified by id, whatever its state,
// and gives its stack back. Destroying an invalid or already destroyed ID
// does nothing.
//
// A suspended coroutine is unwound: its pending [Stackful.Yield] never
// returns, and deferred calls in its body run. The body must not recover
// the panic that unwinds it; a body that does keeps running inside Destroy.
// A coroutine may destroy itself, or one of the coroutines it was resumed
// from; teardown then happens once control is back in the Resume call that
// ran it, which reports [Ended].
func (e *Stackful) Destroy(id ID) {
	t, ok := e.thread(id)
	if !ok {
		return
	}

	e.pool.release(id)
	e.threads[id] = nil

	if t.state == Running {
		t.doomed = true
		e.opts.log().Debug("coro: destroy deferred", slog.String("engine", "stackful"), slog.Int("id", int(id)))
		return
	}

	e.teardown(t)
	e.opts.log().Debug("coro: destroyed", slog.String("engine", "stackful"), slog.Int("id", int(id)))
}

// teardown unwinds t and frees its stack. Freeing happens even if unwinding
// panics.
func (e *Stackful) teardown(t *thread) {
	defer func() {
		if t.stack != nil {
			e.opts.stacks.FreeStack(t.stack)
			t.stack = nil
		}
		t.state = Init
		t.fn = nil
		t.arg = nil
		t.yield = nil
		t.resumer = nil
		t.doomed = false
	}()

	f := t.fiber
	if f == nil {
		return
	}
	t.fiber = nil

	if !f.Done() {
		prev := e.current
		e.current = t
		defer func() { e.current = prev }()
		f.Close()
	}
}

// Cleanup destroys every coroutine and resets e to its uninitialized state.
func (e *Stackful) Cleanup() {
	n := 0
	for id := range e.pool.all() {
		e.Destroy(id)
		n++
	}
	e.inited = false
	e.opts.log().Debug("coro: cleaned up", slog.String("engine", "stackful"), slog.Int("destroyed", n))
}

// State returns the lifecycle state of the coroutine identified by id.
// For an invalid ID, State returns Init rather than failing.
func (e *Stackful) State(id ID) State {
	if t, ok := e.thread(id); ok {
		return t.state
	}
	return Init
}

// Len returns the number of live coroutines in e.
func (e *Stackful) Len() int {
	return e.pool.len()
}

// Current returns the ID of the running coroutine, if any.
func (e *Stackful) Current() (ID, bool) {
	if t := e.current; t != nil && !t.doomed {
		return t.id, true
	}
	return NoID, false
}

// StackStats returns the activity of e's stack allocator, if it is
// a [StackArena]. Otherwise it returns zero stats.
func (e *Stackful) StackStats() StackStats {
	if a, ok := e.opts.stacks.(*StackArena); ok {
		return a.Stats()
	}
	return StackStats{}
}
