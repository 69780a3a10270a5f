package engine

import "github.com/roach88/sloimpact/internal/model"

// queueItem is a pending visit: the location to turn into an Impact and the
// Impact that caused it (nil for the initial frontier).
type queueItem struct {
	cause    *model.Impact
	location model.Location
}

// fifo is an unbounded first-in first-out queue.
//
// Queues are local to one calculation and used from a single goroutine, so
// there is no locking.
type fifo[T any] struct {
	items []T
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{items: make([]T, 0, 16)}
}

// Push adds an item to the back of the queue.
func (q *fifo[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the front item.
// Returns the zero value and false if the queue is empty.
func (q *fifo[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]

	// Clear the slot so the backing array does not pin the item's pointers.
	q.items[0] = zero

	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return v, true
}

// Len returns the number of queued items.
func (q *fifo[T]) Len() int {
	return len(q.items)
}
