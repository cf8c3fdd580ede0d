package stream

import (
	"context"
	"io"
	"sync"
)

// queue is an unbounded FIFO of batches with a single consumer.
// Producers never block on it.
type queue struct {
	mu     sync.Mutex
	items  [][]string
	closed bool
	ready  chan struct{}
}

func newQueue() *queue {
	return &queue{
		ready: make(chan struct{}, 1),
	}
}

// push appends a batch. It returns false once the queue is closed.
func (q *queue) push(batch []string) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, batch)
	q.mu.Unlock()

	q.signal()
	return true
}

// close stops accepting batches. Queued batches remain poppable.
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

func (q *queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop waits for the next batch. It returns io.EOF when the queue is
// closed and drained, and ctx.Err() once ctx is done.
func (q *queue) pop(ctx context.Context) ([]string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			batch := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return batch, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, io.EOF
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.ready:
		}
	}
}

// drain closes the queue and returns the number of lines discarded.
func (q *queue) drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	dropped := 0
	for _, batch := range q.items {
		dropped += len(batch)
	}
	q.items = nil
	return dropped
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
