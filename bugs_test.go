package coro_test

import (
	"testing"

	"github.com/b97tsk/coro"
)

func TestBugs(t *testing.T) {
	t.Run("Stackless-CleanupInsideBody", func(t *testing.T) {
		e := coro.NewStackless()

		var fresh coro.ID

		id, _ := e.Create(func(co *coro.Frame, arg any) {
			e.Cleanup()
			fresh, _ = e.Create(func(co *coro.Frame, arg any) {
				co.Yield(7)
			}, nil)
			co.Yield(1) // Must not touch the coroutine created above.
		}, nil)

		if st, err := e.Resume(id); err != nil || st != coro.Ended {
			t.Fatalf("Resume = %v, %v; want Ended", st, err)
		}
		if s := e.State(fresh); s != coro.Init {
			t.Fatalf("state of the fresh coroutine = %v, want Init", s)
		}
		if st, err := e.Resume(fresh); err != nil || st != coro.Yielded {
			t.Fatalf("Resume(fresh) = %v, %v", st, err)
		}
	})
	t.Run("Stackful-CleanupInsideBody", func(t *testing.T) {
		for _, b := range backends {
			e := coro.NewStackful(coro.WithBackend(b))

			var fresh coro.ID

			id, _ := e.Create(func(arg any) {
				e.Cleanup()
				fresh, _ = e.Create(func(any) { e.Yield() }, nil)
				e.Yield()
			}, nil)

			if st, err := e.Resume(id); err != nil || st != coro.Ended {
				t.Fatalf("%v: Resume = %v, %v; want Ended", b, st, err)
			}
			if st, err := e.Resume(fresh); err != nil || st != coro.Yielded {
				t.Fatalf("%v: Resume(fresh) = %v, %v", b, st, err)
			}

			e.Cleanup()

			if stats := e.StackStats(); stats.Allocs != stats.Frees || stats.InUse != 0 {
				t.Fatalf("%v: stack stats = %+v", b, stats)
			}
		}
	})
	t.Run("Stackful-DestroyResumer", func(t *testing.T) {
		for _, b := range backends {
			e := coro.NewStackful(coro.WithBackend(b))

			var outer coro.ID

			inner, _ := e.Create(func(any) {
				e.Destroy(outer)
				e.Yield()
			}, nil)

			outer, _ = e.Create(func(any) {
				e.Resume(inner)
				e.Yield()
				t.Error("destroyed resumer kept running")
			}, nil)

			if st, err := e.Resume(outer); err != nil || st != coro.Ended {
				t.Fatalf("%v: Resume = %v, %v; want Ended", b, st, err)
			}
			if s := e.State(inner); s != coro.Suspended {
				t.Fatalf("%v: inner state = %v, want Suspended", b, s)
			}

			e.Cleanup()

			if stats := e.StackStats(); stats.Frees != 2 || stats.InUse != 0 {
				t.Fatalf("%v: stack stats = %+v", b, stats)
			}
		}
	})
	t.Run("Stackful-ResumeAncestor", func(t *testing.T) {
		for _, b := range backends {
			e := coro.NewStackful(coro.WithBackend(b))

			var outer coro.ID

			inner, _ := e.Create(func(any) {
				if _, err := e.Resume(outer); err == nil {
					t.Error("resuming a resumer succeeded")
				}
			}, nil)

			outer, _ = e.Create(func(any) { e.Resume(inner) }, nil)

			if st, err := e.Resume(outer); err != nil || st != coro.Ended {
				t.Fatalf("%v: Resume = %v, %v", b, st, err)
			}

			e.Cleanup()
		}
	})
}
