package coro

import "iter"

// DefaultCapacity is the number of coroutines an engine can hold at once
// unless configured otherwise.
const DefaultCapacity = 1024

// pool hands out coroutine identities.
//
// The lowest free ID is always handed out first. Released IDs go to
// a free list; fresh ones extend the table, which grows lazily up to
// capacity. A capacity of zero or less means no ceiling.
type pool struct {
	capacity int
	live     []bool
	free     freelist
	n        int
}

func (p *pool) init(capacity int) {
	p.capacity = capacity
	p.reset()
}

func (p *pool) acquire() (ID, bool) {
	if !p.free.Empty() {
		id := p.free.Pop()
		p.live[id] = true
		p.n++
		return id, true
	}
	if p.capacity > 0 && len(p.live) >= p.capacity {
		return NoID, false
	}
	id := ID(len(p.live))
	p.live = append(p.live, true)
	p.n++
	return id, true
}

// release frees id. Releasing an ID that is not live does nothing and
// reports false.
func (p *pool) release(id ID) bool {
	if !p.isLive(id) {
		return false
	}
	p.live[id] = false
	p.n--
	p.free.Push(id)
	return true
}

func (p *pool) isLive(id ID) bool {
	return id >= 0 && int(id) < len(p.live) && p.live[id]
}

// len reports the number of live IDs.
func (p *pool) len() int {
	return p.n
}

func (p *pool) reset() {
	clear(p.live)
	p.live = p.live[:0]
	p.free.Reset()
	p.n = 0
}

// all yields every live ID in ascending order.
// Releasing IDs while iterating is allowed.
func (p *pool) all() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for i := range p.live {
			if p.live[i] && !yield(ID(i)) {
				return
			}
		}
	}
}
