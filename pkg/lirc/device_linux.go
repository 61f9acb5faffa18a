//go:build linux

package lirc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unsafe"

	"github.com/AlexxIT/go2ir/pkg/ir"
	"golang.org/x/sys/unix"
)

// Device - reads and writes go through os.File on a non blocking fd,
// so the runtime poller can interrupt a pending read on Close.
// Ioctls use the raw fd.
type Device struct {
	f        *os.File
	fd       int
	features uint32
}

func Open(path string) (*Device, error) {
	const flags = unix.O_CLOEXEC | unix.O_NONBLOCK

	fd, err := unix.Open(path, unix.O_RDWR|flags, 0)
	if err != nil {
		// receive only devices
		if fd, err = unix.Open(path, unix.O_RDONLY|flags, 0); err != nil {
			return nil, err
		}
	}

	features, err := unix.IoctlGetUint32(fd, GetFeatures)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("lirc: get features: %w", err)
	}

	return newDevice(fd, path, features), nil
}

func newDevice(fd int, path string, features uint32) *Device {
	return &Device{f: os.NewFile(uintptr(fd), path), fd: fd, features: features}
}

func (d *Device) Features() uint32 {
	return d.features
}

func (d *Device) CanSend() bool {
	return d.features&CanSendPulse != 0
}

func (d *Device) CanReceive() bool {
	return d.features&CanRecMode2 != 0
}

func (d *Device) SetCarrier(carrier uint32) error {
	if d.features&CanSetSendCarrier == 0 {
		return ErrNotSupported
	}
	return unix.IoctlSetPointerInt(d.fd, SetSendCarrier, int(carrier))
}

// SetTransmitters - kernel returns the number of transmitters
// as a positive error when the mask is too wide
func (d *Device) SetTransmitters(mask uint32) error {
	if d.features&CanSetTransmitterMask == 0 {
		return ErrNotSupported
	}
	return unix.IoctlSetPointerInt(d.fd, SetTransmitterMask, int(mask))
}

// ReadSamples switches the device to mode2 and calls f for each mark, space
// and timeout until the device is closed (os.ErrClosed) or fails
func (d *Device) ReadSamples(f func(s ir.Sample)) error {
	if !d.CanReceive() {
		return ErrNotSupported
	}
	if err := unix.IoctlSetPointerInt(d.fd, SetRecMode, ModeMode2); err != nil {
		return fmt.Errorf("lirc: set rec mode: %w", err)
	}
	return d.readLoop(f)
}

func (d *Device) readLoop(f func(s ir.Sample)) error {
	buf := make([]byte, 4*64)
	for {
		n, err := d.f.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		words := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), n/4)
		for _, word := range words {
			if s, kind := ParseMode2(word); kind != KindFrequency && kind != KindUnknown {
				f(s)
			}
		}
	}
}

// Send - ir.Sender implementation. Write blocks until the pulses are sent,
// then the trailing gap is waited out so back to back frames keep their timing.
func (d *Device) Send(w ir.Waveform, carrier, mask uint32) error {
	if !d.CanSend() {
		return ErrNotSupported
	}

	if carrier != 0 {
		if err := d.SetCarrier(carrier); err != nil && err != ErrNotSupported {
			return err
		}
	}
	if mask != 0 {
		if err := d.SetTransmitters(mask); err != nil && err != ErrNotSupported {
			return err
		}
	}

	pulses, gap := Pulses(w)
	if len(pulses) == 0 {
		return nil
	}

	b := unsafe.Slice((*byte)(unsafe.Pointer(&pulses[0])), 4*len(pulses))
	if _, err := d.f.Write(b); err != nil {
		return fmt.Errorf("lirc: write: %w", err)
	}

	time.Sleep(time.Duration(gap) * time.Microsecond)
	return nil
}

func (d *Device) Close() error {
	return d.f.Close()
}

func (d *Device) String() string {
	return d.f.Name()
}
