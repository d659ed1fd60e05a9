package fiber

import "runtime"

// chanFiber runs the body on a goroutine of its own and passes control
// back and forth over two unbuffered channels.
type chanFiber struct {
	body    Body
	resume  chan bool // true: run on; false: unwind
	back    chan struct{}
	started bool
	done    bool
	closing bool
	panic   any
	goexit  bool
}

func newChanFiber(body Body) *chanFiber {
	return &chanFiber{
		body:   body,
		resume: make(chan bool),
		back:   make(chan struct{}),
	}
}

func (f *chanFiber) run() {
	normal := false
	defer func() {
		if !normal {
			if v := recover(); v != nil {
				f.panic = v
			} else {
				f.goexit = true
			}
		}
		f.done = true
		f.back <- struct{}{}
	}()
	f.body(f.yield)
	normal = true
}

func (f *chanFiber) yield() bool {
	if f.closing {
		return false
	}
	f.back <- struct{}{}
	return <-f.resume
}

func (f *chanFiber) Switch() bool {
	if f.done {
		return false
	}
	if !f.started {
		f.started = true
		go f.run()
	} else {
		f.resume <- true
	}
	<-f.back
	f.rethrow()
	return !f.done
}

func (f *chanFiber) Close() {
	if f.done {
		return
	}
	if !f.started {
		f.done = true
		return
	}
	f.closing = true
	f.resume <- false
	<-f.back
	f.rethrow()
}

// rethrow carries a panic or Goexit of the body over to the calling side.
func (f *chanFiber) rethrow() {
	if v := f.panic; v != nil {
		f.panic = nil
		panic(v)
	}
	if f.goexit {
		f.goexit = false
		runtime.Goexit()
	}
}

func (f *chanFiber) Done() bool {
	return f.done
}
