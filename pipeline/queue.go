package pipeline

import (
	"sync"
)

// Queue is a thread-safe unbounded FIFO connecting two pipeline stages.
// Producers call Enqueue, consumers block in Dequeue, and the producer
// side calls Finish exactly once to signal that no more items will ever
// arrive. Items already enqueued remain drainable after Finish.
type Queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	finished bool
}

func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item and wakes one blocked consumer. It returns
// false and drops the item if the queue has already been finished.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.finished {
		return false
	}

	q.items = append(q.items, item)
	q.cond.Signal()
	return true
}

// Dequeue blocks while the queue is empty and not finished. It returns
// the head item, or false once the queue is both empty and finished.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.finished {
			var zero T
			return zero, false
		}
		q.cond.Wait()
	}

	item := q.items[0]
	// Release the head slot so the backing array does not pin the item
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Finish marks the queue as closed for enqueues and wakes all blocked
// consumers so every one of them observes end of stream. It is idempotent.
func (q *Queue[T]) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.finished = true
	q.cond.Broadcast()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
