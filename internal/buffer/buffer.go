package buffer

import "sync"

// Buffer is an unbounded, mutex-guarded staging area. Producers append
// from the transport delivery path while a single flush loop drains;
// the lock is never held across I/O.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T
}

// New returns an empty buffer.
func New[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

// Append adds items to the pending set.
func (b *Buffer[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, items...)
	b.mu.Unlock()
}

// DrainAll removes and returns every pending item in arrival order,
// leaving the buffer empty. Removal and return are one atomic step; an
// item is never both drained and left behind.
func (b *Buffer[T]) DrainAll() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// Len reports the number of pending items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
