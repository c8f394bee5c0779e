package session

import (
	"sync"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// updateQueue hands updates to the reader without blocking the producer
// and without dropping any. Pending updates are kept until delivered; the
// output channel is closed once the queue is closed and drained.
type updateQueue struct {
	mu      sync.Mutex
	pending []core.Update
	closed  bool

	wake chan struct{}
	out  chan core.Update
}

func newUpdateQueue(size int) *updateQueue {
	q := &updateQueue{
		wake: make(chan struct{}, 1),
		out:  make(chan core.Update, size),
	}
	go q.run()
	return q
}

func (q *updateQueue) push(up core.Update) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, up)
	q.mu.Unlock()
	q.signal()
}

func (q *updateQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *updateQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *updateQueue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, up := range batch {
			q.out <- up
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
