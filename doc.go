// Package coro is a library of cooperative coroutines with two engines that
// share one contract: create, resume, yield and destroy.
//
// The two engines exist side by side so that one can compare two ways of
// suspending a computation, with identical call semantics on both sides.
// One can create as many engines as they like; engines are independent of
// each other.
//
// # Stackless Coroutines
//
// A [Stackless] engine represents a suspended coroutine by nothing more than
// an integer resume point ([Point]) and whatever the coroutine keeps in its
// argument or user data.
// Resuming one is a plain function call into the coroutine body, which looks
// at [Frame.Point] to find out where to continue:
//
//	func worker(co *coro.Frame, arg any) {
//		n := arg.(*int)
//		switch co.Point() {
//		case coro.Start, 1:
//			if *n < 10 {
//				*n++
//				co.Yield(1)
//				return
//			}
//		}
//		co.End()
//	}
//
// Since no stack is kept, a stackless coroutine can only yield from the top
// level of its body. A yield from inside a nested call cannot be resumed
// into. The engine cannot detect it; it is up to the body to be structured
// accordingly.
//
// # Stackful Coroutines
//
// A [Stackful] engine runs each coroutine on a stack of its own, so that
// a coroutine can call [Stackful.Yield] from any depth of nested calls and
// pick up exactly where it was, with every frame intact.
// The price is a full context transfer between the coroutine's stack and its
// resumer's, on every resume and on every yield.
//
// How a context transfer is made is selected with [WithBackend]. By default,
// the runtime's coroutine switch is used, which is the mechanism behind
// [iter.Pull].
//
// # Lifecycle
//
// A coroutine starts out Init. Resume sets it Running for as long as
// the coroutine runs; when Resume returns, the coroutine is either Suspended
// ([Yielded]) or Finished ([Ended]). Resuming a Finished coroutine returns
// [Ended] right away without running anything.
//
// A coroutine only goes away when it is destroyed, either by Destroy or by
// Cleanup, which destroys every coroutine of an engine.
// Destroying is allowed in any state, and destroying twice is harmless.
// IDs are handed out lowest-first; the ID of a destroyed coroutine is the
// first one to be handed out again.
//
// # Scheduling
//
// There is no scheduler. The caller decides which coroutine to resume and
// when; Resume does not return until the coroutine yields or ends.
// A coroutine that neither yields nor returns blocks its Resume call, and
// the goroutine that made it, forever.
//
// Engines are not safe for concurrent use. One goroutine drives an engine.
//
// # Panic Propagation
//
// A coroutine that panics is marked Finished and never runs again.
// The Resume call that ran it panics with a [*PanicError], which carries
// the panic value and a stack trace of the coroutine.
package coro
