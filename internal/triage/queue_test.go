package triage

import (
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(10)

	for i := int64(1); i <= 5; i++ {
		if !q.TryEnqueue(Job{RequestID: i}) {
			t.Fatalf("enqueue %d failed on non-full queue", i)
		}
	}

	for i := int64(1); i <= 5; i++ {
		job, ok := q.Dequeue()
		if !ok {
			t.Fatalf("queue reported closed with jobs remaining")
		}
		if job.RequestID != i {
			t.Fatalf("dequeued %d, want %d", job.RequestID, i)
		}
	}
}

func TestQueueCapacityBound(t *testing.T) {
	const capacity = 4
	q := NewQueue(capacity)

	for i := 0; i < capacity; i++ {
		if !q.TryEnqueue(Job{RequestID: int64(i)}) {
			t.Fatalf("enqueue %d failed below capacity", i)
		}
	}
	if q.TryEnqueue(Job{RequestID: 99}) {
		t.Fatal("enqueue beyond capacity succeeded")
	}
	if q.Len() != capacity {
		t.Fatalf("Len() = %d, want %d", q.Len(), capacity)
	}

	// Dequeuing one frees exactly one slot.
	if _, ok := q.Dequeue(); !ok {
		t.Fatal("dequeue failed")
	}
	if !q.TryEnqueue(Job{RequestID: 100}) {
		t.Fatal("enqueue failed after a slot was freed")
	}
	if q.TryEnqueue(Job{RequestID: 101}) {
		t.Fatal("enqueue beyond capacity succeeded after refill")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 50
	q := NewQueue(producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if !q.TryEnqueue(Job{RequestID: int64(p*perProducer + i)}) {
					t.Errorf("enqueue failed on queue with room")
					return
				}
			}
		}(p)
	}
	wg.Wait()
	q.Close()

	seen := make(map[int64]bool)
	for {
		job, ok := q.Dequeue()
		if !ok {
			break
		}
		if seen[job.RequestID] {
			t.Fatalf("job %d dequeued twice", job.RequestID)
		}
		seen[job.RequestID] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("dequeued %d jobs, want %d", len(seen), producers*perProducer)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue(2)
	if !q.TryEnqueue(Job{RequestID: 1}) {
		t.Fatal("enqueue failed")
	}
	q.Close()
	q.Close() // idempotent

	if q.TryEnqueue(Job{RequestID: 2}) {
		t.Fatal("enqueue succeeded after close")
	}

	// The queued job is still drainable.
	job, ok := q.Dequeue()
	if !ok || job.RequestID != 1 {
		t.Fatalf("Dequeue() = (%v, %v), want job 1", job.RequestID, ok)
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue reported a job on a closed, drained queue")
	}
}

func TestQueueCloseUnblocksConsumer(t *testing.T) {
	q := NewQueue(1)
	done := make(chan bool)

	go func() {
		_, ok := q.Dequeue()
		done <- ok
	}()

	q.Close()
	if ok := <-done; ok {
		t.Fatal("blocked Dequeue returned a job after close of empty queue")
	}
}
