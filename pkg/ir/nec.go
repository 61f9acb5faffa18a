package ir

import "fmt"

// NEC
// https://www.sbprojects.net/knowledge/ir/nec.php

const (
	necUnit  = 560    // us
	necGap   = 22     // units
	necFrame = 110000 // us

	necRepeat = 100 // state after the short leader space of a repeat code
)

// NECCode - raw 32 bit frame, sent LSB first: address low, address high, command, inverted command.
// 8 bit address use inverted low byte as high byte.
func NECCode(address uint16, command byte) uint32 {
	lo, hi := byte(address), byte(address>>8)
	if hi == 0 {
		hi = ^lo
	}
	return uint32(^command)<<24 | uint32(command)<<16 | uint32(hi)<<8 | uint32(lo)
}

// SplitNECCode - reverse of NECCode, ok is false if the command check fails
func SplitNECCode(code uint32) (address uint16, command byte, ok bool) {
	lo, hi := byte(code), byte(code>>8)
	if hi == ^lo {
		address = uint16(lo)
	} else {
		address = uint16(hi)<<8 | uint16(lo)
	}
	command = byte(code >> 16)
	return address, command, byte(code>>24) == ^command
}

func encodeNEC(cmd Command) (Waveform, error) {
	if err := checkRange(cmd, 16, 8); err != nil {
		return nil, err
	}
	if hi, lo := byte(cmd.Device>>8), byte(cmd.Device); hi != 0 && hi == ^lo {
		// indistinguishable from 8 bit address with inverse check
		return nil, fmt.Errorf("%w: nec device 0x%x is ambiguous", ErrOutOfRange, cmd.Device)
	}

	code := NECCode(uint16(cmd.Device), byte(cmd.Command))

	w := make(Waveform, 0, 2+2*32+2)
	w = append(w, 9000, 4500)
	w = pulseDistance(w, code, 32, 563, 562, 1687)
	w = append(w, 562) // stop mark
	return w.pad(necFrame), nil
}

// EncodeNECRepeat - repeat code, sent every 110 ms while the button is held
func EncodeNECRepeat() Waveform {
	w := Waveform{9000, 2250, 562}
	return w.pad(necFrame)
}

// NEC decoder. Emits the command on the stop mark after 32 bits, without
// waiting for a second frame. Repeat code emits the last command again.
type NEC struct {
	state int
	code  uint32

	last    Command
	hasLast bool
}

func NewNEC() *NEC {
	return &NEC{state: stateLeader}
}

func (n *NEC) Name() string {
	return "nec"
}

func (n *NEC) Reset() {
	*n = NEC{state: stateLeader}
}

func (n *NEC) Decode(d uint32, mark bool) (cmd Command, ok bool) {
	delta := quantize(d, necUnit)

	if !mark && delta > necGap {
		n.state = stateLeader
		n.code = 0
		return
	}

	switch {
	case n.state == stateLeader && mark && delta == 16:
		n.state = 2
		return
	case n.state == 2 && !mark && delta == 8:
		n.state = 3
		return
	case n.state == 2 && !mark && delta == 4:
		n.state = necRepeat
		return
	case n.state == necRepeat && mark && delta == 1:
		n.state = stateIdle
		return n.last, n.hasLast
	case n.state >= 3 && n.state < 68 && n.state&1 == 1 && mark && delta == 1:
		if n.state++; n.state == 68 {
			cmd, ok = n.frame()
			n.state = stateIdle
			n.code = 0
		}
		return
	case n.state >= 4 && n.state < 68 && n.state&1 == 0 && !mark && (delta == 1 || delta == 3):
		if delta == 3 {
			n.code |= 1 << ((n.state - 4) / 2)
		}
		n.state++
		return
	}

	n.state = stateIdle
	n.code = 0
	n.hasLast = false
	return
}

func (n *NEC) frame() (Command, bool) {
	address, command, ok := SplitNECCode(n.code)
	if !ok {
		n.hasLast = false
		return Command{}, false
	}

	n.last = Command{Protocol: ProtocolNEC, Device: uint32(address), Command: uint32(command)}
	n.hasLast = true
	return n.last, true
}
