//go:build !linux

package lirc

import "github.com/AlexxIT/go2ir/pkg/ir"

type Device struct{}

func Open(string) (*Device, error) {
	return nil, ErrNotSupported
}

func (d *Device) Features() uint32 {
	return 0
}

func (d *Device) CanSend() bool {
	return false
}

func (d *Device) CanReceive() bool {
	return false
}

func (d *Device) SetCarrier(uint32) error {
	return ErrNotSupported
}

func (d *Device) SetTransmitters(uint32) error {
	return ErrNotSupported
}

func (d *Device) ReadSamples(func(s ir.Sample)) error {
	return ErrNotSupported
}

func (d *Device) Send(ir.Waveform, uint32, uint32) error {
	return ErrNotSupported
}

func (d *Device) Close() error {
	return nil
}

func (d *Device) String() string {
	return ""
}
