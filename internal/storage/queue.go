package storage

import "sync"

// workQueue is the unbounded FIFO feeding a context's worker goroutine.
//
// Enqueue may be called from any goroutine. The signal channel (buffered,
// size 1) coalesces wake-ups; Close closes it to release the worker.
type workQueue struct {
	mu     sync.Mutex
	jobs   []func()
	closed bool
	signal chan struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{
		jobs:   make([]func(), 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a job to the back of the queue.
// Returns false if the queue is closed.
func (q *workQueue) Enqueue(job func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.jobs = append(q.jobs, job)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front job without blocking.
// The second result reports whether the queue is closed and drained.
func (q *workQueue) TryDequeue() (job func(), drained bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, q.closed
	}

	job = q.jobs[0]
	q.jobs[0] = nil
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return job, false
}

// Wait returns a channel that signals when jobs may be available.
func (q *workQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *workQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops accepting jobs. Jobs already queued still run.
func (q *workQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
