package wav

import (
	"errors"
	"io"
	"math"
	"os"
	"sync"

	"github.com/AlexxIT/go2ir/pkg/ir"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Audio jack IR blasters have two LEDs in anti-parallel between left and
// right channels. Sine at half the carrier on the left and inverted sine on
// the right light them in turns, so the LEDs blink at the full carrier.

const (
	DefaultSampleRate = 96000
	BitDepth          = 16
	Channels          = 2

	amplitude = math.MaxInt16
)

var ErrSampleRate = errors.New("wav: sample rate too low for carrier")

// Render - interleaved stereo PCM for the waveform, spaces are silence.
// Zero carrier gives a constant level during marks.
func Render(w ir.Waveform, carrier, rate uint32) (*audio.IntBuffer, error) {
	if rate == 0 || carrier/2 >= rate/2 {
		return nil, ErrSampleRate
	}

	total := uint64(w.Duration()) * uint64(rate) / 1e6
	data := make([]int, 0, 2*total)

	var elapsed uint64 // us
	var i uint64       // sample index
	step := 2 * math.Pi * float64(carrier/2) / float64(rate)

	for n, d := range w {
		elapsed += uint64(d)
		end := elapsed * uint64(rate) / 1e6
		mark := n&1 == 0

		for ; i < end; i++ {
			if !mark {
				data = append(data, 0, 0)
				continue
			}
			v := amplitude
			if carrier != 0 {
				v = int(amplitude * math.Sin(step*float64(i)))
			}
			data = append(data, v, -v)
		}
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: int(rate)},
		Data:           data,
		SourceBitDepth: BitDepth,
	}, nil
}

func Encode(ws io.WriteSeeker, w ir.Waveform, carrier, rate uint32) error {
	buf, err := Render(w, carrier, rate)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(ws, int(rate), BitDepth, Channels, 1)
	if err = enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// Sender saves every transmission to the file, the last one wins
type Sender struct {
	Path       string
	SampleRate uint32

	mu sync.Mutex
}

func NewSender(path string) *Sender {
	return &Sender{Path: path, SampleRate: DefaultSampleRate}
}

func (s *Sender) Send(w ir.Waveform, carrier, _ uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}

	if err = Encode(f, w, carrier, s.SampleRate); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
