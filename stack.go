package coro

import (
	"fmt"
	"sync"
)

// A StackAllocator provides the stacks of stackful coroutines.
//
// A [Stackful] engine calls AllocStack exactly once when creating
// a coroutine and FreeStack exactly once, with the same slice, when
// destroying it. The engine never touches a stack after freeing it.
type StackAllocator interface {
	AllocStack(size int) ([]byte, error)
	FreeStack(stack []byte)
}

// StackStats reports the activity of a [StackArena].
type StackStats struct {
	Allocs uint64 // Number of stacks handed out.
	Frees  uint64 // Number of stacks given back.
	InUse  int64  // Bytes currently handed out.
}

// A StackArena is a [StackAllocator] that recycles freed stacks.
//
// Stacks are zeroed when freed, so a coroutine never sees what a previous
// owner of the same memory left behind.
//
// A StackArena must not be shared by more than one goroutine without
// external synchronization.
type StackArena struct {
	limit int64
	stats StackStats
	pools map[int]*sync.Pool
}

// NewStackArena creates a [StackArena] that hands out at most limit bytes
// at any time. A limit of zero or less means no limit.
func NewStackArena(limit int64) *StackArena {
	return &StackArena{limit: limit}
}

// AllocStack returns a zeroed stack of size bytes.
func (a *StackArena) AllocStack(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid stack size %d", ErrAllocationFailed, size)
	}
	if a.limit > 0 && a.stats.InUse+int64(size) > a.limit {
		return nil, fmt.Errorf("%w: %d of %d bytes in use", ErrAllocationFailed, a.stats.InUse, a.limit)
	}
	var stack []byte
	if p := a.pools[size]; p != nil {
		if v := p.Get(); v != nil {
			stack = *v.(*[]byte)
		}
	}
	if stack == nil {
		stack = make([]byte, size)
	}
	a.stats.Allocs++
	a.stats.InUse += int64(size)
	return stack, nil
}

// FreeStack gives stack back to a.
func (a *StackArena) FreeStack(stack []byte) {
	if stack == nil {
		return
	}
	clear(stack)
	a.stats.Frees++
	a.stats.InUse -= int64(len(stack))
	p := a.pools[len(stack)]
	if p == nil {
		if a.pools == nil {
			a.pools = make(map[int]*sync.Pool)
		}
		p = new(sync.Pool)
		a.pools[len(stack)] = p
	}
	p.Put(&stack)
}

// Stats returns a snapshot of the activity of a.
func (a *StackArena) Stats() StackStats {
	return a.stats
}
