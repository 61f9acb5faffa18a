package ir

// Philips RC-6, mode 0
// https://www.sbprojects.net/knowledge/ir/rc6.php

const (
	rc6Unit  = 444    // us, half of a bit
	rc6Gap   = 19     // units
	rc6Frame = 106667 // us
)

func encodeRC6(cmd Command) (Waveform, error) {
	if err := checkRange(cmd, 8, 8); err != nil {
		return nil, err
	}

	w := make(Waveform, 0, 2+2*21+1)
	w = append(w, 2666, 889)

	w = rc6Bit(w, 1, rc6Unit) // start bit
	for i := 0; i < 3; i++ {
		w = rc6Bit(w, 0, rc6Unit) // mode 0
	}
	w = rc6Bit(w, 0, 2*rc6Unit) // trailer with toggle 0

	code := cmd.Device<<8 | cmd.Command
	for i := 15; i >= 0; i-- {
		w = rc6Bit(w, code>>i&1, rc6Unit)
	}

	return w.pad(rc6Frame), nil
}

// rc6Bit - biphase bit: 1 is mark then space, 0 is space then mark
func rc6Bit(w Waveform, bit, half uint32) Waveform {
	w = w.appendLevel(bit == 1, half)
	return w.appendLevel(bit == 0, half)
}

// RC6 decoder. After the leader each sample is a run of 1-3 half bits and
// every half bit goes to the symbol handler separately.
// Frame layout: start bit (always 1), 3 mode bits, double width trailer bit,
// 16 data bits MSB first. Command is emitted right after the last data bit.
type RC6 struct {
	state int

	halves byte // collected half bits, mark is 1
	count  int  // number of collected half bits

	header     uint32 // start bit and mode
	headerBits int
	trailer    int // same level pairs seen
	toggle     bool

	code uint32
	bits int
}

func NewRC6() *RC6 {
	return &RC6{state: stateLeader}
}

func (r *RC6) Name() string {
	return "rc6"
}

func (r *RC6) Reset() {
	r.reset(stateLeader)
}

// Toggle - trailer bit of the last decoded frame, flips on every new key press
func (r *RC6) Toggle() bool {
	return r.toggle
}

func (r *RC6) reset(state int) {
	toggle := r.toggle
	*r = RC6{state: state, toggle: toggle}
}

func (r *RC6) Decode(d uint32, mark bool) (cmd Command, ok bool) {
	delta := quantize(d, rc6Unit)

	if !mark && delta > rc6Gap {
		if r.state >= 3 && r.count == 1 {
			// space of the last 1 bit is merged with the gap
			cmd, ok = r.half(false)
		}
		r.reset(stateLeader)
		return
	}

	switch {
	case r.state == stateLeader && mark && delta == 6:
		r.state = 2
		return
	case r.state == 2 && !mark && delta == 2:
		r.state = 3
		return
	case r.state >= 3 && delta >= 1 && delta <= 3:
		for ; delta > 0 && r.state >= 3; delta-- {
			if cmd, ok = r.half(mark); ok {
				return
			}
		}
		return
	}

	r.reset(stateIdle)
	return
}

func (r *RC6) half(mark bool) (Command, bool) {
	r.halves <<= 1
	if mark {
		r.halves |= 1
	}
	if r.count++; r.count < 2 {
		return Command{}, false
	}

	pair := r.halves
	r.halves = 0
	r.count = 0
	r.state++

	switch pair {
	case 0b10, 0b01:
		bit := uint32(pair >> 1)

		switch r.trailer {
		case 0:
			if r.headerBits++; r.headerBits > 4 {
				break
			}
			r.header = r.header<<1 | bit
			return Command{}, false
		case 2:
			r.code = r.code<<1 | bit
			if r.bits++; r.bits < 16 {
				return Command{}, false
			}
			cmd := Command{Protocol: ProtocolRC6, Device: r.code >> 8, Command: r.code & 0xFF}
			r.reset(stateIdle)
			return cmd, true
		}

	default:
		// same level pair is a half of the double width trailer bit
		switch r.trailer {
		case 0:
			// start bit must be 1 and only mode 0 is supported
			if r.headerBits != 4 || r.header != 0b1000 {
				break
			}
			r.toggle = pair == 0b11
			r.trailer = 1
			return Command{}, false
		case 1:
			if r.toggle == (pair == 0b11) {
				break
			}
			r.trailer = 2
			return Command{}, false
		}
	}

	r.reset(stateIdle)
	return Command{}, false
}
