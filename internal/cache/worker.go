package cache

import (
	"context"
	"sync"
)

// diskOp runs on a kind's worker with the kind's disk lock held.
type diskOp func(ctx context.Context)

// opQueue is an unbounded FIFO drained by a single worker, so operations on
// one kind land in the order they were scheduled. Scheduling never blocks.
type opQueue struct {
	mu      sync.Mutex
	pending []diskOp
	notify  chan struct{}
	closed  bool
}

func newOpQueue() *opQueue {
	return &opQueue{notify: make(chan struct{}, 1)}
}

// push schedules op. It returns false once the queue is closed.
func (q *opQueue) push(op diskOp) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, op)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// close stops accepting operations; already queued ones still run.
func (q *opQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// take returns the queued operations, or done once closed and drained.
func (q *opQueue) take() (ops []diskOp, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops, q.pending = q.pending, nil
	return ops, len(ops) == 0 && q.closed
}

// run drains the queue until it is closed and empty.
func (q *opQueue) run(ctx context.Context, lock sync.Locker) {
	for {
		ops, done := q.take()
		if done {
			return
		}
		for _, op := range ops {
			lock.Lock()
			op(ctx)
			lock.Unlock()
		}
		if len(ops) == 0 {
			<-q.notify
		}
	}
}

// wait schedules op and blocks until it has run, ctx is done, or the queue
// is closed.
func (q *opQueue) wait(ctx context.Context, op diskOp) error {
	done := make(chan struct{})
	if !q.push(func(ctx context.Context) {
		defer close(done)
		op(ctx)
	}) {
		return errClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
