package ir

import (
	"sync"
	"time"
)

// Queue - fixed capacity ring of samples between a producer that can't block
// (timer interrupt, device reader) and a consumer that decodes.
// Enqueue drops the sample when the ring is full.
// Wakeups are level triggered: one notification may cover many samples,
// so the consumer must always Drain until empty.
type Queue struct {
	samples []Sample
	head    int // next write
	tail    int // next read
	n       int
	dropped int

	mu     sync.Mutex
	notify chan struct{}
	space  chan struct{} // posted by Drain, wakes EnqueueWait
}

func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		samples: make([]Sample, capacity),
		notify:  make(chan struct{}, 1),
		space:   make(chan struct{}, 1),
	}
}

func (q *Queue) Enqueue(s Sample) bool {
	if q.push(s) {
		return true
	}
	q.drop()
	return false
}

// EnqueueWait - for producers that are allowed to block (file replay, API).
// Waits up to timeout for the consumer to free a slot. Only a sample that
// still doesn't fit after the timeout is counted as dropped.
func (q *Queue) EnqueueWait(s Sample, timeout time.Duration) bool {
	if q.push(s) {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.space:
			if q.push(s) {
				return true
			}
		case <-timer.C:
			if q.push(s) {
				return true
			}
			q.drop()
			return false
		}
	}
}

func (q *Queue) push(s Sample) bool {
	q.mu.Lock()
	if q.n == len(q.samples) {
		q.mu.Unlock()
		return false
	}
	q.samples[q.head] = s
	if q.head++; q.head == len(q.samples) {
		q.head = 0
	}
	q.n++
	q.mu.Unlock()

	signal(q.notify)
	return true
}

func (q *Queue) drop() {
	q.mu.Lock()
	q.dropped++
	q.mu.Unlock()
}

// signal - non blocking post to a 1 slot channel
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Drain - pass every queued sample to f in FIFO order. f runs outside the lock.
func (q *Queue) Drain(f func(s Sample)) (n int) {
	for {
		q.mu.Lock()
		if q.n == 0 {
			q.mu.Unlock()
			return
		}
		s := q.samples[q.tail]
		if q.tail++; q.tail == len(q.samples) {
			q.tail = 0
		}
		q.n--
		q.mu.Unlock()

		signal(q.space)

		f(s)
		n++
	}
}

func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

func (q *Queue) Cap() int {
	return len(q.samples)
}

func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
