package ir

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlexxIT/go2ir/pkg/ir"
	"github.com/AlexxIT/go2ir/pkg/lirc"
	"github.com/AlexxIT/go2ir/pkg/wav"
)

// source - producer of raw samples
type source interface {
	ReadSamples(f func(s ir.Sample)) error
	Close() error
}

// devices are shared between receiver and transmitter with the same path
var devices = map[string]*lirc.Device{}

func openDevice(path string) (*lirc.Device, error) {
	if dev := devices[path]; dev != nil {
		return dev, nil
	}

	dev, err := lirc.Open(path)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Uint32("features", dev.Features()).Msg("[ir] lirc")

	devices[path] = dev
	return dev, nil
}

// openSource supports:
// - lirc:/dev/lirc0       - mode2 samples from the kernel
// - file:/path            - signed durations in text, same format as api/ir/raw
// - capture:/dev/ttyACM0  - timer captures from a microcontroller, see readCaptures
func openSource(url string) (source, error) {
	scheme, path, ok := strings.Cut(url, ":")
	if !ok {
		return nil, errors.New("ir: wrong receiver: " + url)
	}

	switch scheme {
	case "lirc":
		return openDevice(path)
	case "file":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &fileSource{f: f}, nil
	case "capture":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &captureSource{f: f}, nil
	}

	return nil, errors.New("ir: unsupported receiver: " + url)
}

// openSender supports:
// - lirc:/dev/lirc0 - kernel transmitter
// - wav:/path.wav   - audio file for audio jack blasters, rewritten on each send
func openSender(url string) (ir.Sender, error) {
	scheme, path, ok := strings.Cut(url, ":")
	if !ok {
		return nil, errors.New("ir: wrong transmitter: " + url)
	}

	switch scheme {
	case "lirc":
		dev, err := openDevice(path)
		if err != nil {
			return nil, err
		}
		if !dev.CanSend() {
			return nil, lirc.ErrNotSupported
		}
		return dev, nil
	case "wav":
		return wav.NewSender(path), nil
	}

	return nil, errors.New("ir: unsupported transmitter: " + url)
}

func run(src source) {
	// only files can wait, live sources must drop on a full queue
	queue := queueSample
	if _, ok := src.(*fileSource); ok {
		queue = queueWait
	}

	err := src.ReadSamples(queue)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		log.Error().Err(err).Msg("[ir] receiver")
		return
	}
	log.Debug().Msg("[ir] receiver done")
}

// queueSample - live devices never wait, a full queue drops the sample
func queueSample(s ir.Sample) {
	if !receiver.Queue(s) {
		log.Trace().Int("dropped", receiver.Dropped()).Msg("[ir] queue overflow")
	}
}

// queueWait - files and API replays can wait for the consumer
// instead of dropping samples
func queueWait(s ir.Sample) {
	if !receiver.QueueWait(s, 100*time.Millisecond) {
		log.Warn().Int("dropped", receiver.Dropped()).Msg("[ir] queue overflow")
	}
}

type fileSource struct {
	f io.ReadCloser
}

func (s *fileSource) ReadSamples(f func(s ir.Sample)) error {
	return readSamples(s.f, f)
}

func (s *fileSource) Close() error {
	return s.f.Close()
}

// readSamples - whitespace separated signed integers, zero values are skipped
func readSamples(r io.Reader, f func(s ir.Sample)) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		i, err := strconv.ParseInt(scanner.Text(), 10, 32)
		if err != nil {
			return err
		}
		if i != 0 {
			f(ir.Sample(i))
		}
	}

	return scanner.Err()
}

type captureSource struct {
	f io.ReadCloser
}

func (s *captureSource) ReadSamples(f func(s ir.Sample)) error {
	return readCaptures(s.f, f)
}

func (s *captureSource) Close() error {
	return s.f.Close()
}

// readCaptures - one input capture event per line: "count wraps level".
// Count is a free running 16 bit microsecond timer, wraps is the number of
// overflows since the previous event, level is 1 when a mark just ended.
func readCaptures(r io.Reader, f func(s ir.Sample)) error {
	var capture ir.Capture

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return errors.New("ir: wrong capture: " + scanner.Text())
		}

		count, err := strconv.ParseUint(fields[0], 0, 16)
		if err != nil {
			return err
		}
		wraps, err := strconv.ParseUint(fields[1], 0, 8)
		if err != nil {
			return err
		}

		if s := capture.Sample(uint16(count), uint8(wraps), fields[2] == "1"); s != 0 {
			f(s)
		}
	}

	return scanner.Err()
}
