// Package msgq provides the FIFO queue that connects a producer goroutine to
// a consumer goroutine in the relay pipelines.
package msgq

import "sync"

// Queue is a FIFO guarded by a mutex with a condition for "non-empty or stop
// requested". A capacity <= 0 means unbounded.
type Queue[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	notFull  *sync.Cond

	items    []T
	head     int
	capacity int
	// woken is set by Wake; bounded producers stop waiting for space afterwards.
	woken bool
}

// New returns an empty queue. capacity <= 0 disables the bound.
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{capacity: capacity}
	q.nonEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Cap returns the configured bound, 0 when unbounded.
func (q *Queue[T]) Cap() int {
	if q.capacity <= 0 {
		return 0
	}
	return q.capacity
}

// Push appends item and wakes one waiting consumer. On a bounded queue it
// blocks while the queue is full, unless the queue has been woken for
// shutdown, in which case the item is appended past the bound.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	for q.fullLocked() && !q.woken {
		q.notFull.Wait()
	}
	q.appendLocked(item)
	q.mu.Unlock()
	q.nonEmpty.Signal()
}

// TryPush appends item unless the queue is bounded and full.
func (q *Queue[T]) TryPush(item T) bool {
	q.mu.Lock()
	if q.fullLocked() {
		q.mu.Unlock()
		return false
	}
	q.appendLocked(item)
	q.mu.Unlock()
	q.nonEmpty.Signal()
	return true
}

// PopBlocking waits until the queue is non-empty or stop reports true.
// It returns the head item and true when one is available. When woken by
// stop with an empty queue it returns the zero value and false.
// stop is evaluated with the queue lock held and must not touch the queue.
func (q *Queue[T]) PopBlocking(stop func() bool) (T, bool) {
	q.mu.Lock()
	for q.lenLocked() == 0 && !stop() {
		q.nonEmpty.Wait()
	}
	if q.lenLocked() == 0 {
		q.mu.Unlock()
		var zero T
		return zero, false
	}
	item := q.popLocked()
	q.mu.Unlock()
	q.notFull.Signal()
	return item, true
}

// TryPop returns the head item without waiting.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	item := q.popLocked()
	q.notFull.Signal()
	return item, true
}

// Len is a lock-protected snapshot of the queue length.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Wake broadcasts on every condition so that all blocked consumers re-check
// their stop predicate and blocked producers stop waiting for space.
// The broadcast happens under the lock: a consumer that observed stop()==false
// is already parked in Wait by the time Wake gets the lock.
func (q *Queue[T]) Wake() {
	q.mu.Lock()
	q.woken = true
	q.nonEmpty.Broadcast()
	q.notFull.Broadcast()
	q.mu.Unlock()
}

func (q *Queue[T]) lenLocked() int { return len(q.items) - q.head }

func (q *Queue[T]) fullLocked() bool {
	return q.capacity > 0 && q.lenLocked() >= q.capacity
}

func (q *Queue[T]) appendLocked(item T) {
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 0 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.items = append(q.items, item)
}

func (q *Queue[T]) popLocked() T {
	item := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item
}
