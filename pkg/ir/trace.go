package ir

import (
	"io"
	"strconv"
	"sync"
)

// Trace - lossy ring of raw samples for diagnostics.
// Record never blocks the decoder: when full the oldest sample is overwritten.
type Trace struct {
	buf  []Sample
	r, w int
	n    int
	mu   sync.Mutex
}

func NewTrace(capacity int) *Trace {
	if capacity < 1 {
		capacity = 1
	}
	return &Trace{buf: make([]Sample, capacity)}
}

func (t *Trace) Record(s Sample) {
	t.mu.Lock()
	t.buf[t.w] = s
	if t.w++; t.w == len(t.buf) {
		t.w = 0
	}
	if t.n == len(t.buf) {
		// overflow, move read position with write position
		t.r = t.w
	} else {
		t.n++
	}
	t.mu.Unlock()
}

// Read - consume up to max samples (all samples if max <= 0)
func (t *Trace) Read(max int) []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	if max <= 0 || max > t.n {
		max = t.n
	}

	samples := make([]Sample, max)
	for i := range samples {
		samples[i] = t.buf[t.r]
		if t.r++; t.r == len(t.buf) {
			t.r = 0
		}
	}
	t.n -= max
	return samples
}

// WriteTo - consume all pending samples as text, one signed integer per line
func (t *Trace) WriteTo(w io.Writer) (n int64, err error) {
	var b []byte
	for _, s := range t.Read(0) {
		b = strconv.AppendInt(b, int64(s), 10)
		b = append(b, '\n')
	}
	if len(b) == 0 {
		return 0, nil
	}
	nn, err := w.Write(b)
	return int64(nn), err
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}
