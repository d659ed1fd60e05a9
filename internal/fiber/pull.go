package fiber

import "iter"

// pullFiber switches with iter.Pull.
//
// Once the body returns, panics or calls runtime.Goexit, next reports false
// and iter.Pull carries the panic (or Goexit) over to the caller of Switch.
type pullFiber struct {
	next func() (struct{}, bool)
	stop func()
	done bool
}

func newPullFiber(body Body) *pullFiber {
	f := new(pullFiber)
	f.next, f.stop = iter.Pull(func(yield func(struct{}) bool) {
		body(func() bool { return yield(struct{}{}) })
	})
	return f
}

func (f *pullFiber) Switch() bool {
	if f.done {
		return false
	}
	ok := false
	defer func() {
		if !ok {
			f.done = true
		}
	}()
	_, alive := f.next()
	ok = true
	f.done = !alive
	return alive
}

func (f *pullFiber) Close() {
	f.done = true
	f.stop()
}

func (f *pullFiber) Done() bool {
	return f.done
}
