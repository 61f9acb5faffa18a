package lirc

import (
	"errors"

	"github.com/AlexxIT/go2ir/pkg/ioctl"
	"github.com/AlexxIT/go2ir/pkg/ir"
)

// https://www.kernel.org/doc/html/latest/userspace-api/media/rc/lirc-dev-intro.html

// Mode2 word: 8 bit type and 24 bit value
const (
	Space     = 0x00000000
	Pulse     = 0x01000000
	Frequency = 0x02000000
	Timeout   = 0x03000000

	ValueMask = 0x00FFFFFF
	TypeMask  = 0xFF000000
)

const (
	ModeRaw   = 0x00000001
	ModePulse = 0x00000002
	ModeMode2 = 0x00000004
)

// Features bits
const (
	CanSendPulse           = ModePulse
	CanRecMode2            = ModeMode2 << 16
	CanSetSendCarrier      = 0x00000100
	CanSetSendDutyCycle    = 0x00000200
	CanSetTransmitterMask  = 0x00000400
	CanSetRecTimeout       = 0x10000000
	CanMeasureCarrier      = 0x02000000
	CanUseWidebandReceiver = 0x04000000
)

var (
	GetFeatures        = ioctl.IOR('i', 0x00, 4)
	GetSendMode        = ioctl.IOR('i', 0x01, 4)
	GetRecMode         = ioctl.IOR('i', 0x02, 4)
	SetSendMode        = ioctl.IOW('i', 0x11, 4)
	SetRecMode         = ioctl.IOW('i', 0x12, 4)
	SetSendCarrier     = ioctl.IOW('i', 0x13, 4)
	SetSendDutyCycle   = ioctl.IOW('i', 0x15, 4)
	SetTransmitterMask = ioctl.IOW('i', 0x17, 4)
)

var ErrNotSupported = errors.New("lirc: not supported")

type Kind byte

const (
	KindSpace Kind = iota
	KindPulse
	KindFrequency
	KindTimeout
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindSpace:
		return "space"
	case KindPulse:
		return "pulse"
	case KindFrequency:
		return "frequency"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// ParseMode2 converts one word from the device. Pulse becomes a mark sample,
// space and timeout become a space sample. Frequency has no sample.
func ParseMode2(word uint32) (ir.Sample, Kind) {
	value := word & ValueMask

	switch word & TypeMask {
	case Space:
		return ir.Space(value), KindSpace
	case Pulse:
		return ir.Mark(value), KindPulse
	case Frequency:
		return 0, KindFrequency
	case Timeout:
		return ir.Space(value), KindTimeout
	}
	return 0, KindUnknown
}

// Mode2 - reverse of ParseMode2 for mark and space samples
func Mode2(s ir.Sample) uint32 {
	d, mark := s.Split()
	if d > ValueMask {
		d = ValueMask
	}
	if mark {
		return Pulse | d
	}
	return Space | d
}

// Pulses - device accepts an odd number of values that starts and ends
// with a pulse, so the trailing gap is returned separately
func Pulses(w ir.Waveform) (pulses []uint32, gap uint32) {
	if len(w) == 0 {
		return nil, 0
	}
	if len(w)&1 == 0 {
		return w[:len(w)-1], w[len(w)-1]
	}
	return w, 0
}
