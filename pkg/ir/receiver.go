package ir

import (
	"sync"
	"time"
)

const (
	DefaultQueueSize = 512
	DefaultTraceSize = 1024
)

type ReceiverConfig struct {
	QueueSize int
	TraceSize int
	Decoders  []Decoder // nil for DefaultDecoders
}

// Receiver owns the queue, trace and decoders of one input device.
// Queue is the only method safe for the producer side, decoding happens
// in the consumer goroutine started with Start.
type Receiver struct {
	queue      *Queue
	trace      *Trace
	dispatcher *Dispatcher

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewReceiver(handler Handler, cfg ReceiverConfig) *Receiver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.TraceSize <= 0 {
		cfg.TraceSize = DefaultTraceSize
	}

	r := &Receiver{
		queue:      NewQueue(cfg.QueueSize),
		trace:      NewTrace(cfg.TraceSize),
		dispatcher: NewDispatcher(handler, cfg.Decoders...),
		done:       make(chan struct{}),
	}
	r.dispatcher.SetTrace(r.trace)
	return r
}

// Queue - producer side, never blocks, false if the sample was dropped
func (r *Receiver) Queue(s Sample) bool {
	return r.queue.Enqueue(s)
}

// QueueWait - producer side for sources that can wait for the consumer,
// false if the sample was dropped after timeout
func (r *Receiver) QueueWait(s Sample, timeout time.Duration) bool {
	return r.queue.EnqueueWait(s, timeout)
}

func (r *Receiver) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.queue.Notify():
				r.Process()
			case <-r.done:
				r.Process()
				return
			}
		}
	}()
}

// Process - decode all queued samples in the caller goroutine.
// Only for receivers without Start or for tests.
func (r *Receiver) Process() int {
	return r.queue.Drain(func(s Sample) {
		r.dispatcher.Decode(s)
	})
}

func (r *Receiver) Close() {
	r.once.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}

func (r *Receiver) Trace() *Trace {
	return r.trace
}

func (r *Receiver) Dropped() int {
	return r.queue.Dropped()
}

func (r *Receiver) QueueSize() int {
	return r.queue.Cap()
}

func (r *Receiver) Decoders() []Decoder {
	return r.dispatcher.Decoders()
}
