package ir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AlexxIT/go2ir/pkg/ir"
	"github.com/AlexxIT/go2ir/pkg/wav"
	"github.com/stretchr/testify/require"
)

func TestReadSamples(t *testing.T) {
	var samples []ir.Sample
	err := readSamples(strings.NewReader("-9000 4500\n0\n-560\t\n"), func(s ir.Sample) {
		samples = append(samples, s)
	})
	require.Nil(t, err)
	require.Equal(t, []ir.Sample{-9000, 4500, -560}, samples)

	err = readSamples(strings.NewReader("-9000 x"), func(ir.Sample) {})
	require.NotNil(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nec.txt")
	body := waveformText(t, ir.Command{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34})
	require.Nil(t, os.WriteFile(path, []byte(body), 0644))

	src, err := openSource("file:" + path)
	require.Nil(t, err)
	defer src.Close()

	var commands []ir.Command
	dispatcher := ir.NewDispatcher(func(cmd ir.Command) {
		commands = append(commands, cmd)
	})
	require.Nil(t, src.ReadSamples(func(s ir.Sample) {
		dispatcher.Decode(s)
	}))
	require.Equal(t, []ir.Command{{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34}}, commands)
}

func TestStartFileReceiver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jvc.txt")
	body := waveformText(t, ir.Command{Protocol: ir.ProtocolJVC, Device: 3, Command: 23})
	require.Nil(t, os.WriteFile(path, []byte(body+body), 0644))

	require.Nil(t, start(Config{Receiver: "file:" + path, Carrier: 38000, Xmitter: 1}))

	require.Eventually(t, func() bool {
		return receiver.Trace().Len() == 2*strings.Count(body, "\n")
	}, time.Second, 10*time.Millisecond)

	Close()
	require.Empty(t, sources)
}

func TestReadCaptures(t *testing.T) {
	w, err := ir.Encode(ir.Command{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34})
	require.Nil(t, err)

	// timer events as a microcontroller would print them
	var sb strings.Builder
	sb.WriteString("0 0 0\n")
	var now uint32
	for i, d := range w {
		wraps := (now+d)>>16 - now>>16
		now += d
		fmt.Fprintf(&sb, "%d %d %d\n", now&0xFFFF, wraps, 1-i&1)
	}

	path := filepath.Join(t.TempDir(), "capture.txt")
	require.Nil(t, os.WriteFile(path, []byte(sb.String()), 0644))

	src, err := openSource("capture:" + path)
	require.Nil(t, err)
	defer src.Close()

	var samples []ir.Sample
	require.Nil(t, src.ReadSamples(func(s ir.Sample) {
		samples = append(samples, s)
	}))
	require.Equal(t, w.Samples(), samples)

	err = readCaptures(strings.NewReader("100 0\n"), func(ir.Sample) {})
	require.NotNil(t, err)
}

func TestOpenErrors(t *testing.T) {
	for _, url := range []string{"", "lirc", "usb:/dev/ir", "file:/not/exists"} {
		_, err := openSource(url)
		require.NotNil(t, err, url)
	}

	for _, url := range []string{"", "gpio:18", "lirc:/dev/lirc-not-exists"} {
		_, err := openSender(url)
		require.NotNil(t, err, url)
	}
}

func TestWavSender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ir.wav")

	sender, err := openSender("wav:" + path)
	require.Nil(t, err)
	require.IsType(t, &wav.Sender{}, sender)

	tx := ir.NewTransmitter(sender)
	require.Nil(t, tx.Send(ir.Command{Protocol: ir.ProtocolRC6, Device: 1, Command: 2}))

	info, err := os.Stat(path)
	require.Nil(t, err)
	require.Greater(t, info.Size(), int64(44))
}

func TestQueueWaitNoDrops(t *testing.T) {
	receiver = ir.NewReceiver(onCommand, ir.ReceiverConfig{QueueSize: 1})

	done := make(chan struct{})
	go func() {
		queueWait(-560)
		queueWait(560)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	n := receiver.Process()

	<-done
	n += receiver.Process()
	require.Equal(t, 2, n)
	require.Equal(t, 0, receiver.Dropped())
	require.Equal(t, 2, receiver.Trace().Len())

	// live devices don't wait
	queueSample(-560)
	queueSample(560)
	require.Equal(t, 1, receiver.Dropped())
}
