package ir

// JVC
// https://www.sbprojects.net/knowledge/ir/jvc.php

const (
	jvcUnit  = 525   // us
	jvcGap   = 10    // units, leader space is 8 units
	jvcFrame = 55000 // us
)

func encodeJVC(cmd Command) (Waveform, error) {
	if err := checkRange(cmd, 8, 8); err != nil {
		return nil, err
	}

	w := make(Waveform, 0, 2+2*16+2)
	w = append(w, 16*jvcUnit, 8*jvcUnit)
	w = pulseDistance(w, cmd.Device, 8, jvcUnit, jvcUnit, 3*jvcUnit)
	w = pulseDistance(w, cmd.Command, 8, jvcUnit, jvcUnit, 3*jvcUnit)
	w = append(w, jvcUnit) // stop mark
	return w.pad(jvcFrame), nil
}

// JVC decoder. Same states layout as Sony, but the bit value is in the space.
// After 16 bits decoder waits for marks of the next frame without a leader.
// Command is emitted only when two frames in a row have the same code.
type JVC struct {
	state int
	code  uint32

	pending    uint32
	hasPending bool
}

func NewJVC() *JVC {
	return &JVC{state: stateLeader}
}

func (j *JVC) Name() string {
	return "jvc"
}

func (j *JVC) Reset() {
	*j = JVC{state: stateLeader}
}

func (j *JVC) Decode(d uint32, mark bool) (cmd Command, ok bool) {
	delta := quantize(d, jvcUnit)

	if !mark && delta > jvcGap {
		j.state = stateLeader
		j.code = 0
		return
	}

	switch {
	case j.state == stateLeader && mark && delta == 16:
		j.state = 2
		return
	case j.state == 2 && !mark && delta == 8:
		j.state = 3
		return
	case j.state >= 3 && j.state&1 == 1 && mark && delta == 1:
		j.state++
		return
	case j.state >= 4 && j.state&1 == 0 && !mark && (delta == 1 || delta == 3):
		if delta == 3 {
			j.code |= 1 << ((j.state - 4) / 2)
		}
		if j.state++; j.state == 35 {
			cmd, ok = j.frame()
			j.state = 3
			j.code = 0
		}
		return
	}

	j.state = stateIdle
	j.code = 0
	return
}

func (j *JVC) frame() (Command, bool) {
	if !j.hasPending || j.pending != j.code {
		j.pending = j.code
		j.hasPending = true
		return Command{}, false
	}

	j.hasPending = false

	return Command{Protocol: ProtocolJVC, Device: j.code & 0xFF, Command: j.code >> 8}, true
}
