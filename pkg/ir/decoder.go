package ir

// Decoder - one protocol state machine. Every decoder sees every sample,
// the raw stream has no protocol tag. A sample that doesn't fit the current
// state silently resets the decoder, this is the normal resync path.
type Decoder interface {
	Name() string
	Decode(d uint32, mark bool) (Command, bool)
	Reset()
}

// Decoder states shared by all protocols
const (
	stateIdle   = 0 // wait for a gap
	stateLeader = 1 // wait for leader mark
)

type Handler func(cmd Command)

// Dispatcher feeds each sample to all decoders in a fixed order
type Dispatcher struct {
	decoders []Decoder
	handler  Handler
	trace    *Trace
}

// DefaultDecoders - Sony, JVC, NEC, RC5, RC6
func DefaultDecoders() []Decoder {
	return []Decoder{NewSony(), NewJVC(), NewNEC(), NewRC5(), NewRC6()}
}

func NewDispatcher(handler Handler, decoders ...Decoder) *Dispatcher {
	if decoders == nil {
		decoders = DefaultDecoders()
	}
	return &Dispatcher{decoders: decoders, handler: handler}
}

// SetTrace - record every sample before decoding, nil disables
func (d *Dispatcher) SetTrace(trace *Trace) {
	d.trace = trace
}

func (d *Dispatcher) Decoders() []Decoder {
	return d.decoders
}

// Decode returns the number of commands passed to the handler.
// Several decoders can match the same sample, results are not deduplicated.
func (d *Dispatcher) Decode(s Sample) (n int) {
	if d.trace != nil {
		d.trace.Record(s)
	}

	duration, mark := s.Split()

	for _, decoder := range d.decoders {
		if cmd, ok := decoder.Decode(duration, mark); ok {
			if d.handler != nil {
				d.handler(cmd)
			}
			n++
		}
	}
	return
}

func (d *Dispatcher) Reset() {
	for _, decoder := range d.decoders {
		decoder.Reset()
	}
}
