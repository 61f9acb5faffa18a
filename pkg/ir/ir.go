package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Protocol byte

const (
	ProtocolUnknown Protocol = iota
	ProtocolSony12
	ProtocolSony15
	ProtocolSony20
	ProtocolJVC
	ProtocolNEC
	ProtocolRC5
	ProtocolRC6
	ProtocolRCMM
	ProtocolNokia
	ProtocolSharp
	ProtocolRECS80
	ProtocolRCA
	ProtocolITT
)

var protocolNames = [...]string{
	ProtocolUnknown: "unknown",
	ProtocolSony12:  "sony12",
	ProtocolSony15:  "sony15",
	ProtocolSony20:  "sony20",
	ProtocolJVC:     "jvc",
	ProtocolNEC:     "nec",
	ProtocolRC5:     "rc5",
	ProtocolRC6:     "rc6",
	ProtocolRCMM:    "rcmm",
	ProtocolNokia:   "nokia",
	ProtocolSharp:   "sharp",
	ProtocolRECS80:  "recs80",
	ProtocolRCA:     "rca",
	ProtocolITT:     "itt",
}

func (p Protocol) String() string {
	if int(p) < len(protocolNames) {
		return protocolNames[p]
	}
	return protocolNames[ProtocolUnknown]
}

// Carrier - modulation frequency in Hz, zero for unmodulated (ITT) and unknown protocols
func (p Protocol) Carrier() uint32 {
	switch p {
	case ProtocolRC5, ProtocolRC6, ProtocolRCMM:
		return 36000
	case ProtocolJVC, ProtocolNEC, ProtocolNokia, ProtocolSharp, ProtocolRECS80:
		return 38000
	case ProtocolSony12, ProtocolSony15, ProtocolSony20:
		return 40000
	case ProtocolRCA:
		return 56000
	}
	return 0
}

func ParseProtocol(s string) (Protocol, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range protocolNames {
		if i > 0 && name == s {
			return Protocol(i), nil
		}
	}
	return ProtocolUnknown, fmt.Errorf("ir: unknown protocol %q", s)
}

func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(b []byte) (err error) {
	*p, err = ParseProtocol(string(b))
	return
}

// ParseCommand - reverse of Command.String, numbers in any Go base
func ParseCommand(s string) (Command, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Command{}, fmt.Errorf("ir: wrong command %q", s)
	}

	protocol, err := ParseProtocol(parts[0])
	if err != nil {
		return Command{}, err
	}

	device, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 32)
	if err != nil {
		return Command{}, fmt.Errorf("ir: wrong device in %q", s)
	}

	command, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 0, 32)
	if err != nil {
		return Command{}, fmt.Errorf("ir: wrong command in %q", s)
	}

	return Command{Protocol: protocol, Device: uint32(device), Command: uint32(command)}, nil
}

// Protocols - all known protocols except ProtocolUnknown
func Protocols() []Protocol {
	protocols := make([]Protocol, 0, len(protocolNames)-1)
	for i := 1; i < len(protocolNames); i++ {
		protocols = append(protocols, Protocol(i))
	}
	return protocols
}

type Command struct {
	Protocol Protocol `json:"protocol"`
	Device   uint32   `json:"device"`
	Command  uint32   `json:"command"`
}

func (c Command) String() string {
	return fmt.Sprintf("%s:0x%x:0x%x", c.Protocol, c.Device, c.Command)
}

// Sample - signed duration in microseconds since previous transition.
// Negative value is a mark (carrier on), positive is a space.
type Sample int32

func Mark(d uint32) Sample {
	return -Sample(d)
}

func Space(d uint32) Sample {
	return Sample(d)
}

func (s Sample) Split() (d uint32, mark bool) {
	if s < 0 {
		return uint32(-int64(s)), true
	}
	return uint32(s), false
}

var (
	ErrUnsupported = errors.New("ir: unsupported protocol")
	ErrOutOfRange  = errors.New("ir: value out of range")
	ErrNoSender    = errors.New("ir: no transmitter")
)

// quantize - duration in whole units with rounding
func quantize(d, unit uint32) uint32 {
	return (d + unit/2) / unit
}
