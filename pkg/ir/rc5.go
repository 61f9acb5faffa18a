package ir

// Philips RC-5
// https://www.sbprojects.net/knowledge/ir/rc5.php

const rc5Unit = 889 // us

// TODO: RC-5 decoding and encoding, both are stubs for now

func encodeRC5(Command) (Waveform, error) {
	return Waveform{}, nil
}

// RC5 decoder only quantizes the input and never emits
type RC5 struct{}

func NewRC5() *RC5 {
	return &RC5{}
}

func (r *RC5) Name() string {
	return "rc5"
}

func (r *RC5) Reset() {}

func (r *RC5) Decode(d uint32, mark bool) (Command, bool) {
	_ = quantize(d, rc5Unit)
	return Command{}, false
}
