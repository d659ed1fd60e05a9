package coro

// Engine is the part of the coroutine contract that both engines share.
//
// Creating a coroutine and yielding from one depend on the kind of
// engine, so they are not part of Engine: see [Stackless.Create],
// [Frame.Yield], [Stackful.Create] and [Stackful.Yield].
type Engine interface {
	// Init prepares the engine for use; calling it again does nothing.
	Init()

	// Resume runs a coroutine until it yields or ends.
	Resume(id ID) (Status, error)

	// Destroy releases a coroutine, whatever its state.
	Destroy(id ID)

	// Cleanup destroys every coroutine and uninitializes the engine.
	Cleanup()

	// State reports the lifecycle state of a coroutine, or Init for
	// an invalid ID.
	State(id ID) State

	// Len reports the number of live coroutines.
	Len() int
}

var (
	_ Engine = (*Stackless)(nil)
	_ Engine = (*Stackful)(nil)
)
