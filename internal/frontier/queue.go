// Package frontier provides the shared work queue of a crawl.
//
// The queue tracks how many pushed items have not yet been retired. A worker
// pushes all of an item's children before retiring the item itself, so the
// in-flight count only reaches zero when no item is queued or being
// processed. At that point the queue closes itself and every blocked Pop
// returns ErrClosed.
package frontier

import (
	"context"
	"errors"
	"net/url"
	"sync"
)

// ErrClosed is returned by Push and Pop once the queue has been closed
var ErrClosed = errors.New("frontier closed")

// Item is a unit of crawl work. Items are not modified after creation.
type Item struct {
	URL   *url.URL
	Depth int
}

// Queue is an unbounded multi-producer multi-consumer FIFO of Items.
// It is safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	items    []Item
	head     int
	inFlight int
	closed   bool
	wake     chan struct{} // closed and replaced on every state change
	done     chan struct{} // closed exactly once, on Close
}

// New creates an empty, open queue
func New() *Queue {
	return &Queue{
		wake: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Push appends item and counts it as in flight.
func (q *Queue) Push(item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}

	q.items = append(q.items, item)
	q.inFlight++
	q.broadcast()
	return nil
}

// Pop claims the oldest queued item, blocking until one is available, the
// queue is closed or ctx is done. Once ctx is done no further item is
// claimed, even if some are queued. The caller owns the returned item and
// must call Done exactly once when it has finished with it.
func (q *Queue) Pop(ctx context.Context) (Item, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Item{}, err
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return Item{}, ErrClosed
		}
		if q.head < len(q.items) {
			item := q.items[q.head]
			q.items[q.head] = Item{}
			q.head++
			q.compact()
			q.mu.Unlock()
			return item, nil
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Item{}, ctx.Err()
		case <-wake:
		}
	}
}

// Done retires one claimed item. When nothing remains in flight the queue
// is closed.
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight <= 0 {
		panic("frontier: Done called more times than Push")
	}
	q.inFlight--
	if q.inFlight == 0 {
		q.closeLocked()
	}
}

// Close closes the queue without waiting for in-flight items. It reports
// whether this call was the one that closed it.
func (q *Queue) Close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closeLocked()
}

// Closed returns a channel that is closed when the queue closes
func (q *Queue) Closed() <-chan struct{} {
	return q.done
}

// Len returns the number of queued, unclaimed items
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// InFlight returns the number of pushed items not yet retired
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

func (q *Queue) closeLocked() bool {
	if q.closed {
		return false
	}
	q.closed = true
	close(q.done)
	q.broadcast()
	return true
}

func (q *Queue) broadcast() {
	close(q.wake)
	q.wake = make(chan struct{})
}

// compact drops the consumed prefix once it dominates the backing array.
func (q *Queue) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
}
