package coro

import "slices"

// freelist holds released IDs in descending order, so that the lowest one
// sits at the end and can be taken without shifting.
type freelist struct {
	ids []ID
}

func (l *freelist) Empty() bool {
	return len(l.ids) == 0
}

// Push adds id. It must not already be in l.
func (l *freelist) Push(id ID) {
	i, _ := slices.BinarySearchFunc(l.ids, id, func(e, t ID) int {
		return int(t - e) // Descending.
	})
	l.ids = slices.Insert(l.ids, i, id)
}

// Pop removes and returns the lowest ID in l.
func (l *freelist) Pop() ID {
	n := len(l.ids) - 1
	id := l.ids[n]
	l.ids = l.ids[:n]
	return id
}

func (l *freelist) Reset() {
	l.ids = l.ids[:0]
}
