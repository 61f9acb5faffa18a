package ir

// Sony SIRC
// https://www.sbprojects.net/knowledge/ir/sirc.php

const (
	sonyUnit  = 600   // us
	sonyGap   = 8     // units, the trailing space of a full 20 bit frame is only 11 units
	sonyFrame = 45000 // us
)

// sonyBits - command and device field widths
func sonyBits(protocol Protocol) (command, device int) {
	switch protocol {
	case ProtocolSony15:
		return 7, 8
	case ProtocolSony20:
		return 10, 10
	}
	return 7, 5
}

// sonyProtocol - frame length by the state after the last mark
func sonyProtocol(state int) Protocol {
	switch state {
	case 26:
		return ProtocolSony12
	case 32:
		return ProtocolSony15
	case 42:
		return ProtocolSony20
	}
	return ProtocolUnknown
}

func encodeSony(cmd Command) (Waveform, error) {
	commandBits, deviceBits := sonyBits(cmd.Protocol)
	if err := checkRange(cmd, deviceBits, commandBits); err != nil {
		return nil, err
	}

	w := make(Waveform, 0, 4*2*(1+commandBits+deviceBits))
	w = append(w, 4*sonyUnit, sonyUnit)
	w = pulseWidth(w, cmd.Command, commandBits, sonyUnit, 2*sonyUnit, sonyUnit)
	w = pulseWidth(w, cmd.Device, deviceBits, sonyUnit, 2*sonyUnit, sonyUnit)
	// space after the last bit becomes the frame gap
	w = w.pad(sonyFrame)

	// remote sends the frame at least three times, we send four
	w = append(w, w...)
	w = append(w, w...)
	return w, nil
}

// Sony decoder. State 1 waits for the leader mark, 2 for the leader space,
// odd states from 3 wait for a bit mark, even states from 4 for a bit space.
// Frame ends with a gap right after the 12th, 15th or 20th mark.
// Command is emitted only when two frames in a row have the same code.
type Sony struct {
	state int
	code  uint32

	pending    uint32
	pendingLen Protocol
}

func NewSony() *Sony {
	return &Sony{state: stateLeader}
}

func (s *Sony) Name() string {
	return "sony"
}

func (s *Sony) Reset() {
	*s = Sony{state: stateLeader}
}

func (s *Sony) Decode(d uint32, mark bool) (cmd Command, ok bool) {
	delta := quantize(d, sonyUnit)

	if !mark && delta > sonyGap {
		if protocol := sonyProtocol(s.state); protocol != ProtocolUnknown {
			cmd, ok = s.frame(protocol)
		}
		s.state = stateLeader
		s.code = 0
		return
	}

	switch {
	case s.state == stateLeader && mark && delta == 4:
		s.state = 2
		return
	case s.state == 2 && !mark && delta == 1:
		s.state = 3
		return
	case s.state >= 3 && s.state < 42 && s.state&1 == 1 && mark && (delta == 1 || delta == 2):
		s.state++
		s.code |= (delta - 1) << ((s.state - 4) / 2)
		return
	case s.state >= 4 && s.state&1 == 0 && !mark && delta == 1:
		s.state++
		return
	}

	s.state = stateIdle
	s.code = 0
	return
}

func (s *Sony) frame(protocol Protocol) (Command, bool) {
	if s.pendingLen != protocol || s.pending != s.code {
		s.pending = s.code
		s.pendingLen = protocol
		return Command{}, false
	}

	s.pendingLen = ProtocolUnknown

	commandBits, _ := sonyBits(protocol)
	return Command{
		Protocol: protocol,
		Device:   s.code >> commandBits,
		Command:  s.code & (1<<commandBits - 1),
	}, true
}
