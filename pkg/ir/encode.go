package ir

import "fmt"

// Waveform - durations in microseconds, starts with a mark, alternates
// mark/space and ends with the trailing gap (always even length)
type Waveform []uint32

func (w Waveform) Duration() (total uint32) {
	for _, d := range w {
		total += d
	}
	return
}

func (w Waveform) Samples() []Sample {
	samples := make([]Sample, len(w))
	for i, d := range w {
		if i&1 == 0 {
			samples[i] = Mark(d)
		} else {
			samples[i] = Space(d)
		}
	}
	return samples
}

// pad the waveform to the fixed frame time, so the frame length doesn't depend
// on the payload bits
func (w Waveform) pad(frame uint32) Waveform {
	var gap uint32
	if total := w.Duration(); total < frame {
		gap = frame - total
	}
	if len(w)&1 == 0 {
		// ends with a space, make it longer
		w[len(w)-1] += gap
		return w
	}
	return append(w, gap)
}

// appendLevel adds a duration, merging it with the last one when the level is same
func (w Waveform) appendLevel(mark bool, d uint32) Waveform {
	if n := len(w); n > 0 && (n&1 == 1) == mark {
		w[n-1] += d
		return w
	}
	if len(w) == 0 && !mark {
		// first item must be mark
		return append(w, 0, d)
	}
	return append(w, d)
}

// Encode builds a waveform for the command. RC5 and RCMM are not implemented
// and return an empty waveform without error.
func Encode(cmd Command) (Waveform, error) {
	switch cmd.Protocol {
	case ProtocolSony12, ProtocolSony15, ProtocolSony20:
		return encodeSony(cmd)
	case ProtocolJVC:
		return encodeJVC(cmd)
	case ProtocolNEC:
		return encodeNEC(cmd)
	case ProtocolRC5, ProtocolRCMM:
		return encodeRC5(cmd)
	case ProtocolRC6:
		return encodeRC6(cmd)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, cmd.Protocol)
}

// EncodeRepeat - command followed by repeats, like a held button.
// NEC repeats with the short repeat code, other protocols resend the frame.
func EncodeRepeat(cmd Command, repeats int) (Waveform, error) {
	w, err := Encode(cmd)
	if err != nil || len(w) == 0 || repeats <= 0 {
		return w, err
	}

	var frame Waveform
	if cmd.Protocol == ProtocolNEC {
		frame = EncodeNECRepeat()
	} else {
		frame = append(Waveform(nil), w...)
	}

	for i := 0; i < repeats; i++ {
		w = append(w, frame...)
	}
	return w, nil
}

func checkRange(cmd Command, deviceBits, commandBits int) error {
	if cmd.Device>>deviceBits != 0 {
		return fmt.Errorf("%w: %s device 0x%x exceeds %d bits", ErrOutOfRange, cmd.Protocol, cmd.Device, deviceBits)
	}
	if cmd.Command>>commandBits != 0 {
		return fmt.Errorf("%w: %s command 0x%x exceeds %d bits", ErrOutOfRange, cmd.Protocol, cmd.Command, commandBits)
	}
	return nil
}

// pulseDistance - fixed mark, bit value in the space length, LSB first
func pulseDistance(w Waveform, value uint32, bits int, mark, zero, one uint32) Waveform {
	for i := 0; i < bits; i++ {
		if value>>i&1 != 0 {
			w = append(w, mark, one)
		} else {
			w = append(w, mark, zero)
		}
	}
	return w
}

// pulseWidth - bit value in the mark length, fixed space, LSB first
func pulseWidth(w Waveform, value uint32, bits int, zero, one, space uint32) Waveform {
	for i := 0; i < bits; i++ {
		if value>>i&1 != 0 {
			w = append(w, one, space)
		} else {
			w = append(w, zero, space)
		}
	}
	return w
}
