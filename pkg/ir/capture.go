package ir

// Capture converts input capture events of a free running 16 bit timer into
// samples. Timer should tick every microsecond.
type Capture struct {
	previous uint16
}

// Sample - wraps is the number of counter overflows since the previous event,
// mark is true when the interval that just ended was a mark.
func (c *Capture) Sample(count uint16, wraps uint8, mark bool) Sample {
	delta := int64(count) - int64(c.previous) + int64(wraps)*0x10000
	c.previous = count

	if delta < 0 {
		delta = 0 // lost overflow
	}

	if mark {
		return Sample(-delta)
	}
	return Sample(delta)
}
