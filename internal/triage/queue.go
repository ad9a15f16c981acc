package triage

import "sync"

// Queue is a bounded FIFO of triage jobs, safe for many concurrent producers
// and a single consumer. Producers never block: TryEnqueue reports failure
// immediately when the queue is at capacity or closed.
type Queue struct {
	mu     sync.RWMutex
	jobs   chan Job
	closed bool
}

// NewQueue creates a queue holding at most capacity jobs.
func NewQueue(capacity int) *Queue {
	return &Queue{jobs: make(chan Job, capacity)}
}

// TryEnqueue appends the job to the queue without blocking. It returns false
// when the queue is full or already closed.
func (q *Queue) TryEnqueue(job Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		return false
	}
}

// Dequeue blocks until a job is available or the queue is closed and drained.
// The second return value is false once no more jobs will ever arrive.
func (q *Queue) Dequeue() (Job, bool) {
	job, ok := <-q.jobs
	return job, ok
}

// Close stops admission. Jobs already queued can still be dequeued; once they
// are drained, Dequeue reports closed. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Len reports the number of jobs currently queued.
func (q *Queue) Len() int {
	return len(q.jobs)
}
