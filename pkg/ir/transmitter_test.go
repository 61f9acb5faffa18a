package ir

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type sent struct {
	w       Waveform
	carrier uint32
	mask    uint32
}

func recorder(calls *[]sent) Sender {
	return SenderFunc(func(w Waveform, carrier, mask uint32) error {
		*calls = append(*calls, sent{append(Waveform(nil), w...), carrier, mask})
		return nil
	})
}

func TestTransmitterSend(t *testing.T) {
	var calls []sent
	tx := NewTransmitter(recorder(&calls))

	require.Nil(t, tx.Send(Command{ProtocolNEC, 0x12, 0x34}))
	require.Nil(t, tx.Send(Command{ProtocolSony12, 0x01, 0x15}))

	tx.SetTransmitters(0b11)
	require.Nil(t, tx.Send(Command{ProtocolRC6, 0x01, 0x02}))

	require.Len(t, calls, 3)
	require.Equal(t, uint32(38000), calls[0].carrier)
	require.Equal(t, uint32(40000), calls[1].carrier)
	require.Equal(t, uint32(36000), calls[2].carrier)
	require.Equal(t, uint32(1), calls[0].mask)
	require.Equal(t, uint32(0b11), calls[2].mask)

	w, _ := Encode(Command{ProtocolNEC, 0x12, 0x34})
	require.Equal(t, w, calls[0].w)
}

func TestTransmitterNotImplemented(t *testing.T) {
	var calls []sent
	tx := NewTransmitter(recorder(&calls))

	require.Nil(t, tx.Send(Command{Protocol: ProtocolRC5, Device: 1, Command: 2}))
	require.Empty(t, calls)

	err := tx.Send(Command{Protocol: ProtocolNokia})
	require.True(t, errors.Is(err, ErrUnsupported))

	err = tx.Send(Command{Protocol: ProtocolJVC, Device: 0x100})
	require.True(t, errors.Is(err, ErrOutOfRange))
	require.Empty(t, calls)
}

func TestTransmitterSendRepeat(t *testing.T) {
	var calls []sent
	tx := NewTransmitter(recorder(&calls))

	cmd := Command{Protocol: ProtocolNEC, Device: 0x12, Command: 0x34}
	require.Nil(t, tx.SendRepeat(cmd, 3))
	require.Len(t, calls, 1)
	require.Equal(t, uint32(4*110000), calls[0].w.Duration())

	require.Equal(t, ErrNoSender, NewTransmitter(nil).SendRepeat(cmd, 1))
}

func TestTransmitterNoSender(t *testing.T) {
	tx := NewTransmitter(nil)
	require.Equal(t, ErrNoSender, tx.Send(Command{ProtocolNEC, 1, 2}))
	require.Equal(t, ErrNoSender, tx.SendRaw(Waveform{100, 100}))
}

func TestTransmitterSendRaw(t *testing.T) {
	var calls []sent
	tx := NewTransmitter(recorder(&calls))
	require.Equal(t, uint32(38000), tx.Carrier())

	tx.SetCarrier(56000)
	require.Nil(t, tx.SendRaw(Waveform{500, 500, 1000, 20000}))
	require.Nil(t, tx.SendRaw(nil))

	require.Equal(t, []sent{{Waveform{500, 500, 1000, 20000}, 56000, 1}}, calls)
}

func TestTransmitterSerialize(t *testing.T) {
	var active, overlaps int
	var mu sync.Mutex

	tx := NewTransmitter(SenderFunc(func(w Waveform, carrier, mask uint32) error {
		mu.Lock()
		active++
		if active > 1 {
			overlaps++
		}
		mu.Unlock()

		// buffer is owned by the sender until return
		first := w[0]
		for i := 0; i < 1000; i++ {
			if w[0] != first {
				overlaps++
			}
		}

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i&1 == 0 {
				_ = tx.Send(Command{ProtocolNEC, uint32(i), 0x34})
			} else {
				_ = tx.Send(Command{ProtocolJVC, uint32(i), 0x34})
			}
		}(i)
	}
	wg.Wait()

	require.Zero(t, overlaps)
}
