package coro_test

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/b97tsk/coro"
)

// A kit wraps an engine so that the same test can drive both kinds.
type kit struct {
	name   string
	engine coro.Engine

	// yieldN creates a coroutine that yields n times and then returns.
	yieldN func(n int) (coro.ID, error)

	// worker creates a coroutine that increments *counter once per resume
	// for as long as *counter is below limit, yielding after each increment.
	worker func(counter *int, limit int) (coro.ID, error)
}

func kits(opts ...coro.Option) []kit {
	stackless := coro.NewStackless(opts...)
	ks := []kit{{
		name:   "Stackless",
		engine: stackless,
		yieldN: func(n int) (coro.ID, error) {
			i := 0
			return stackless.Create(func(co *coro.Frame, arg any) {
				if i < n {
					i++
					co.Yield(coro.Point(i))
					return
				}
				co.End()
			}, nil)
		},
		worker: func(counter *int, limit int) (coro.ID, error) {
			return stackless.Create(func(co *coro.Frame, arg any) {
				n := arg.(*int)
				if *n < limit {
					*n++
					co.Yield(1)
					return
				}
				co.End()
			}, counter)
		},
	}}
	for _, b := range backends {
		stackful := coro.NewStackful(append(slices.Clip(opts), coro.WithBackend(b))...)
		ks = append(ks, kit{
			name:   "Stackful/" + b.String(),
			engine: stackful,
			yieldN: func(n int) (coro.ID, error) {
				return stackful.Create(func(any) {
					for range n {
						stackful.Yield()
					}
				}, nil)
			},
			worker: func(counter *int, limit int) (coro.ID, error) {
				return stackful.Create(func(arg any) {
					n := arg.(*int)
					for *n < limit {
						*n++
						stackful.Yield()
					}
				}, counter)
			},
		})
	}
	return ks
}

func TestEngine(t *testing.T) {
	t.Run("Capacity", func(t *testing.T) {
		for _, c := range []int{1, 2, 7, 64} {
			for _, k := range kits(coro.WithCapacity(c)) {
				t.Run(fmt.Sprintf("%s/%d", k.name, c), func(t *testing.T) {
					defer k.engine.Cleanup()
					for i := range c {
						id, err := k.yieldN(1)
						if err != nil {
							t.Fatalf("Create #%d: %v", i, err)
						}
						if id != coro.ID(i) {
							t.Fatalf("Create #%d returned id %d", i, id)
						}
					}
					id, err := k.yieldN(1)
					if !errors.Is(err, coro.ErrPoolExhausted) {
						t.Fatalf("Create beyond capacity: %v", err)
					}
					if id != coro.NoID {
						t.Fatalf("failed Create returned id %d", id)
					}
					if k.engine.Len() != c {
						t.Fatalf("Len() = %d, want %d", k.engine.Len(), c)
					}
				})
			}
		}
	})
	t.Run("ReuseFreedID", func(t *testing.T) {
		for _, k := range kits(coro.WithCapacity(2)) {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				a, _ := k.yieldN(1)
				b, _ := k.yieldN(1)
				if _, err := k.yieldN(1); !errors.Is(err, coro.ErrPoolExhausted) {
					t.Fatalf("third Create: %v", err)
				}
				k.engine.Destroy(a)
				c, err := k.yieldN(1)
				if err != nil {
					t.Fatal(err)
				}
				if c != a {
					t.Fatalf("Create after Destroy returned %d, want freed id %d", c, a)
				}
				if k.engine.State(b) != coro.Init || k.engine.State(c) != coro.Init {
					t.Fatal("fresh coroutines should be Init")
				}
			})
		}
	})
	t.Run("Unbounded", func(t *testing.T) {
		for _, k := range kits(coro.WithCapacity(0), coro.WithStackSize(1024)) {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				for range coro.DefaultCapacity + 10 {
					if _, err := k.yieldN(0); err != nil {
						t.Fatal(err)
					}
				}
			})
		}
	})
	t.Run("InvalidID", func(t *testing.T) {
		for _, k := range kits() {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				id, _ := k.yieldN(0)
				k.engine.Destroy(id)
				for _, bad := range []coro.ID{coro.NoID, -7, id, 1, 1 << 20} {
					st, err := k.engine.Resume(bad)
					if !errors.Is(err, coro.ErrInvalidID) {
						t.Fatalf("Resume(%d) = %v, %v; want ErrInvalidID", bad, st, err)
					}
					if coro.ResultCode(st, err) != -1 {
						t.Fatalf("ResultCode for Resume(%d) != -1", bad)
					}
					if s := k.engine.State(bad); s != coro.Init {
						t.Fatalf("State(%d) = %v, want Init", bad, s)
					}
					k.engine.Destroy(bad)
				}
				if k.engine.Len() != 0 {
					t.Fatalf("Len() = %d, want 0", k.engine.Len())
				}
			})
		}
	})
	t.Run("YieldCount", func(t *testing.T) {
		for _, k := range kits() {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				for n := range 6 {
					id, err := k.yieldN(n)
					if err != nil {
						t.Fatal(err)
					}
					resumes := 0
					for {
						st, err := k.engine.Resume(id)
						if err != nil {
							t.Fatal(err)
						}
						resumes++
						if st == coro.Ended {
							break
						}
						if s := k.engine.State(id); s != coro.Suspended {
							t.Fatalf("state between resumes = %v", s)
						}
					}
					if resumes != n+1 {
						t.Fatalf("%d yields took %d resumes, want %d", n, resumes, n+1)
					}
					for range 3 {
						if st, err := k.engine.Resume(id); err != nil || st != coro.Ended {
							t.Fatalf("Resume of a finished coroutine = %v, %v", st, err)
						}
					}
					k.engine.Destroy(id)
					k.engine.Destroy(id)
				}
			})
		}
	})
	t.Run("PingPong", func(t *testing.T) {
		const rounds = 1000

		var traces [][]int

		for _, k := range kits() {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()

				counter := 0

				a, _ := k.worker(&counter, 2*rounds)
				b, _ := k.worker(&counter, 2*rounds)

				resumes := 0
				for counter < 2*rounds {
					for _, id := range []coro.ID{a, b} {
						st, err := k.engine.Resume(id)
						if err != nil || st != coro.Yielded {
							t.Fatalf("Resume = %v, %v; want Yielded", st, err)
						}
						resumes++
						if counter != resumes {
							t.Fatalf("counter = %d after %d resumes", counter, resumes)
						}
					}
				}
				if resumes != 2*rounds {
					t.Fatalf("reached %d after %d resumes, want %d", counter, resumes, 2*rounds)
				}

				var trace []int
				for _, id := range []coro.ID{a, b, a, b} {
					trace = append(trace, coro.ResultCode(k.engine.Resume(id)))
				}
				traces = append(traces, trace)
			})
		}

		for _, trace := range traces {
			if !slices.Equal(trace, []int{1, 1, 1, 1}) {
				t.Fatalf("ping-pong finish traces differ: %v", traces)
			}
		}
	})
	t.Run("Scenario", func(t *testing.T) {
		const limit = 5

		for _, k := range kits() {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()

				counter := 0

				a, _ := k.worker(&counter, limit)
				b, _ := k.worker(&counter, limit)

				ids := []coro.ID{a, b}

				for i := range limit {
					id := ids[i%2]
					st, err := k.engine.Resume(id)
					if err != nil || st != coro.Yielded {
						t.Fatalf("Resume = %v, %v; want Yielded", st, err)
					}
					if counter != i+1 {
						t.Fatalf("counter = %d, want %d", counter, i+1)
					}
					if s := k.engine.State(id); s != coro.Suspended {
						t.Fatalf("state = %v, want Suspended", s)
					}
				}

				id := ids[limit%2]
				if st, err := k.engine.Resume(id); err != nil || st != coro.Ended {
					t.Fatalf("Resume at limit = %v, %v; want Ended", st, err)
				}
				if s := k.engine.State(id); s != coro.Finished {
					t.Fatalf("state = %v, want Finished", s)
				}
			})
		}
	})
	t.Run("InitIsIdempotent", func(t *testing.T) {
		for _, k := range kits() {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				id, _ := k.yieldN(2)
				k.engine.Resume(id)
				k.engine.Init()
				k.engine.Init()
				if s := k.engine.State(id); s != coro.Suspended {
					t.Fatalf("Init reset a live coroutine: state = %v", s)
				}
				if k.engine.Len() != 1 {
					t.Fatalf("Len() = %d, want 1", k.engine.Len())
				}
			})
		}
	})
	t.Run("CreateDestroyCycles", func(t *testing.T) {
		for _, k := range kits(coro.WithCapacity(1)) {
			t.Run(k.name, func(t *testing.T) {
				defer k.engine.Cleanup()
				for i := range 200 {
					id, err := k.yieldN(i % 3)
					if err != nil {
						t.Fatalf("cycle %d: %v", i, err)
					}
					if id != 0 {
						t.Fatalf("cycle %d: id = %d", i, id)
					}
					for range i % 4 {
						k.engine.Resume(id)
					}
					k.engine.Destroy(id)
				}
				if st, ok := k.engine.(*coro.Stackful); ok {
					if stats := st.StackStats(); stats.Allocs != 200 || stats.Frees != 200 || stats.InUse != 0 {
						t.Fatalf("stack stats = %+v", stats)
					}
				}
			})
		}
	})
}
