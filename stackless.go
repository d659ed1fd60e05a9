package coro

import "log/slog"

// A Point marks where a stackless coroutine suspended itself last.
//
// Point values are chosen by the coroutine body. The only value with
// a fixed meaning is Start, which a coroutine has before its first resume.
type Point int

// Start is the resume point of a coroutine that has not yielded yet.
const Start Point = 0

// A StacklessFunc is the body of a stackless coroutine.
//
// Every resume calls the function again from the top; the function
// dispatches on [Frame.Point] to continue where it left off, and ends
// either by calling [Frame.Yield] and returning, by calling [Frame.End] and
// returning, or by simply returning, which counts as a yield.
//
// Locals do not survive a yield. Anything that must outlive one belongs in
// arg, in [Frame.SetData], or in variables captured by a closure.
type StacklessFunc func(co *Frame, arg any)

// A Frame is a stackless coroutine, as seen from its own body.
//
// A Frame belongs to one coroutine for good. Once that coroutine is
// destroyed, the Frame is dead: Yield, End and SetData do nothing, so
// a leftover Frame never affects another coroutine.
type Frame struct {
	id    ID
	dead  bool
	state State
	point Point
	data  any
	fn    StacklessFunc
	arg   any
}

// ID returns the identity of co.
func (co *Frame) ID() ID {
	return co.id
}

// State returns the lifecycle state of co.
func (co *Frame) State() State {
	return co.state
}

// Point returns the resume point recorded by the last [Frame.Yield], or
// [Start].
func (co *Frame) Point() Point {
	return co.point
}

// Yield records p as the resume point and marks co Suspended.
// The body must return right after calling Yield; the next resume calls the
// body again with [Frame.Point] reporting p.
//
// Yield only works at the top level of the body. There is no stack to keep,
// so a yield from inside a nested call cannot be resumed into; doing so is
// a programming error that goes undetected.
func (co *Frame) Yield(p Point) {
	if co.dead {
		return
	}
	co.point = p
	co.state = Suspended
}

// End marks co Finished. The body should return right after calling End.
func (co *Frame) End() {
	if co.dead {
		return
	}
	co.state = Finished
}

// Data returns the user data of co.
func (co *Frame) Data() any {
	return co.data
}

// SetData replaces the user data of co.
// User data is dropped when the coroutine is destroyed.
func (co *Frame) SetData(v any) {
	if co.dead {
		return
	}
	co.data = v
}

// Stackless is an engine for stackless coroutines.
//
// A stackless coroutine keeps no stack of its own. Resuming one is a plain
// function call into its body, which is why resuming is cheap; the price
// is that a coroutine can only yield from the top level of its body.
//
// The zero value for Stackless is ready to use, with default options.
// A Stackless must not be used by more than one goroutine at a time.
type Stackless struct {
	pool    pool
	frames  []*Frame
	current *Frame
	opts    options
	inited  bool
	custom  bool
}

// NewStackless creates a [Stackless] engine configured by opts.
func NewStackless(opts ...Option) *Stackless {
	e := &Stackless{opts: defaultOptions(), custom: true}
	e.opts.apply(opts)
	e.Init()
	return e
}

// Init prepares e for use. It does nothing if e is already initialized.
// Create calls Init automatically.
func (e *Stackless) Init() {
	if e.inited {
		return
	}
	if !e.custom {
		e.opts = defaultOptions()
		e.custom = true
	}
	e.pool.init(e.opts.capacity)
	clear(e.frames)
	e.frames = e.frames[:0]
	e.inited = true
}

// Create creates a coroutine that runs fn with arg.
// The coroutine does not run until it is resumed.
//
// Create returns [ErrPoolExhausted] if e already holds as many coroutines as
// its capacity allows.
func (e *Stackless) Create(fn StacklessFunc, arg any) (ID, error) {
	if fn == nil {
		panic("coro: nil StacklessFunc")
	}

	e.Init()

	id, ok := e.pool.acquire()
	if !ok {
		e.opts.log().Warn("coro: maximum coroutines reached", slog.String("engine", "stackless"), slog.Int("capacity", e.opts.capacity))
		return NoID, exhausted(e.opts.capacity)
	}

	co := &Frame{id: id, fn: fn, arg: arg}

	if int(id) == len(e.frames) {
		e.frames = append(e.frames, co)
	} else {
		e.frames[id] = co
	}

	e.opts.log().Debug("coro: created", slog.String("engine", "stackless"), slog.Int("id", int(id)))

	return id, nil
}

// freeFrame kills co. Its body may still be running, or a caller may
// hold on to it; either way it must not touch another coroutine.
func freeFrame(co *Frame) {
	co.dead = true
	co.id = NoID
	co.state = Init
	co.point = Start
	co.data = nil
	co.fn = nil
	co.arg = nil
}

func (e *Stackless) frame(id ID) (*Frame, bool) {
	if !e.pool.isLive(id) {
		return nil, false
	}
	return e.frames[id], true
}

// Resume runs the coroutine identified by id until it yields or ends.
//
// Resume returns [Ended] without calling the body again if the coroutine has
// already finished, [ErrInvalidID] if id does not denote a live coroutine,
// and [ErrRunning] if the coroutine is the one calling Resume.
//
// A coroutine may resume another one of e. The resumer stays Running until
// the nested Resume returns, so Running marks every coroutine on the chain
// of active Resume calls, not only the innermost one.
//
// If the body panics, the coroutine is marked Finished and Resume panics
// with a [*PanicError].
func (e *Stackless) Resume(id ID) (Status, error) {
	co, ok := e.frame(id)
	if !ok {
		return Yielded, invalidID(id)
	}

	switch co.state {
	case Finished:
		return Ended, nil
	case Running:
		return Yielded, ErrRunning
	}

	prev := e.current
	e.current = co
	co.state = Running

	returned := false
	defer func() {
		if !returned {
			e.current = prev
			if !co.dead {
				co.state = Finished
			}
			if v := recover(); v != nil {
				panic(newPanicError(v))
			}
		}
	}()

	co.fn(co, co.arg)
	returned = true

	e.current = prev

	if co.dead {
		return Ended, nil // Destroyed by its own body.
	}

	switch co.state {
	case Finished:
		return Ended, nil
	case Running:
		co.state = Suspended
	}

	return Yielded, nil
}

// Destroy releases the coroutine identified by id, whatever its state.
// Destroying an invalid or already destroyed ID does nothing.
//
// A coroutine may destroy itself; its body keeps running until it returns,
// and the Resume call that ran it reports [Ended].
func (e *Stackless) Destroy(id ID) {
	co, ok := e.frame(id)
	if !ok {
		return
	}
	e.pool.release(id)
	e.frames[id] = nil
	freeFrame(co)
	e.opts.log().Debug("coro: destroyed", slog.String("engine", "stackless"), slog.Int("id", int(id)))
}

// Cleanup destroys every coroutine and resets e to its uninitialized state.
func (e *Stackless) Cleanup() {
	n := 0
	for id := range e.pool.all() {
		e.Destroy(id)
		n++
	}
	e.inited = false
	e.opts.log().Debug("coro: cleaned up", slog.String("engine", "stackless"), slog.Int("destroyed", n))
}

// State returns the lifecycle state of the coroutine identified by id.
// For an invalid ID, State returns Init rather than failing.
func (e *Stackless) State(id ID) State {
	if co, ok := e.frame(id); ok {
		return co.state
	}
	return Init
}

// Len returns the number of live coroutines in e.
func (e *Stackless) Len() int {
	return e.pool.len()
}

// Current returns the coroutine whose body is running, if any.
func (e *Stackless) Current() (*Frame, bool) {
	return e.current, e.current != nil
}
