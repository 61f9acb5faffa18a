package ir

import (
	"errors"
	"strconv"
	"strings"
	"sync"
)

// Sender puts the waveform on the air. Carrier is in Hz,
// mask selects transmitters (bit per emitter) when the hardware has several.
type Sender interface {
	Send(w Waveform, carrier, mask uint32) error
}

type SenderFunc func(w Waveform, carrier, mask uint32) error

func (f SenderFunc) Send(w Waveform, carrier, mask uint32) error {
	return f(w, carrier, mask)
}

// Transmitter serializes sends to one device. The send buffer is shared,
// so only one transmission can be in flight.
type Transmitter struct {
	sender Sender
	buf    Waveform
	mu     sync.Mutex

	carrier uint32 // for raw sends
	mask    uint32

	cfgMu sync.Mutex
}

func NewTransmitter(sender Sender) *Transmitter {
	return &Transmitter{sender: sender, carrier: 38000, mask: 1}
}

func (t *Transmitter) Send(cmd Command) error {
	return t.SendRepeat(cmd, 0)
}

// SendRepeat - command and repeat frames in one transmission, see EncodeRepeat
func (t *Transmitter) SendRepeat(cmd Command, repeats int) error {
	if t.sender == nil {
		return ErrNoSender
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	w, err := EncodeRepeat(cmd, repeats)
	if err != nil {
		return err
	}
	if len(w) == 0 {
		return nil // not implemented protocol
	}

	t.buf = append(t.buf[:0], w...)
	return t.sender.Send(t.buf, cmd.Protocol.Carrier(), t.Transmitters())
}

// SendRaw - send waveform with the configured carrier
func (t *Transmitter) SendRaw(w Waveform) error {
	if t.sender == nil {
		return ErrNoSender
	}
	if len(w) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf[:0], w...)
	return t.sender.Send(t.buf, t.Carrier(), t.Transmitters())
}

func (t *Transmitter) Carrier() uint32 {
	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()
	return t.carrier
}

func (t *Transmitter) SetCarrier(carrier uint32) {
	t.cfgMu.Lock()
	t.carrier = carrier
	t.cfgMu.Unlock()
}

func (t *Transmitter) Transmitters() uint32 {
	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()
	return t.mask
}

func (t *Transmitter) SetTransmitters(mask uint32) {
	t.cfgMu.Lock()
	t.mask = mask
	t.cfgMu.Unlock()
}

// ParseRaw - waveform from text with one signed duration per line
// (same format as the trace dump). Polarity is taken from the sign,
// leading spaces are skipped and same level values are merged.
func ParseRaw(s string) (Waveform, error) {
	var w Waveform

	for _, line := range strings.Fields(s) {
		i, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			continue
		}

		d, mark := Sample(i).Split()
		if len(w) == 0 && !mark {
			continue
		}
		w = w.appendLevel(mark, d)
	}

	if len(w) == 0 {
		return nil, errors.New("ir: empty waveform")
	}
	if len(w)&1 == 1 {
		w = append(w, 0) // waveform always ends with a space
	}
	return w, nil
}
