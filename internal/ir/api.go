package ir

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/AlexxIT/go2ir/internal/api"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/pkg/ir"
)

func apiIR(w http.ResponseWriter, r *http.Request) {
	info := struct {
		Queue    int      `json:"queue"`
		Dropped  int      `json:"dropped"`
		Trace    int      `json:"trace"`
		Carrier  uint32   `json:"carrier"`
		Xmitter  uint32   `json:"xmitter"`
		Decoders []string `json:"decoders"`
	}{
		Queue:   receiver.QueueSize(),
		Dropped: receiver.Dropped(),
		Trace:   receiver.Trace().Len(),
		Carrier: transmitter.Carrier(),
		Xmitter: transmitter.Transmitters(),
	}
	for _, decoder := range receiver.Decoders() {
		info.Decoders = append(info.Decoders, decoder.Name())
	}

	api.ResponseJSON(w, info)
}

// apiRaw - GET dumps the trace (and clears it), POST sends the body as a raw waveform
func apiRaw(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		buf := bytes.NewBuffer(nil)
		_, _ = receiver.Trace().WriteTo(buf)
		api.Response(w, buf.Bytes(), api.MimeText)

	case "POST":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		waveform, err := ir.ParseRaw(string(body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err = transmitter.SendRaw(waveform); err != nil {
			sendError(w, err)
			return
		}

	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func apiCarrier(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		api.Response(w, transmitter.Carrier(), api.MimeText)
	case "POST":
		value, err := readUint(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		transmitter.SetCarrier(value)
		saveConfig(value, "carrier")
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func apiXmitter(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		api.Response(w, transmitter.Transmitters(), api.MimeText)
	case "POST":
		value, err := readUint(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if value == 0 {
			http.Error(w, "mask must have at least one transmitter", http.StatusBadRequest)
			return
		}
		transmitter.SetTransmitters(value)
		saveConfig(value, "xmitter")
	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func apiSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	cmd, err := queryCommand(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	repeat, err := queryRepeat(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = transmitter.SendRepeat(cmd, repeat); err != nil {
		sendError(w, err)
		return
	}

	log.Debug().Str("cmd", cmd.String()).Int("repeat", repeat).Msg("[ir] send")
}

// apiEncode - waveform of the command without sending
func apiEncode(w http.ResponseWriter, r *http.Request) {
	cmd, err := queryCommand(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	waveform, err := ir.Encode(cmd)
	if err != nil {
		sendError(w, err)
		return
	}

	api.ResponseJSON(w, struct {
		ir.Command
		Carrier  uint32      `json:"carrier"`
		Duration uint32      `json:"duration"`
		Waveform ir.Waveform `json:"waveform"`
	}{
		Command:  cmd,
		Carrier:  cmd.Protocol.Carrier(),
		Duration: waveform.Duration(),
		Waveform: waveform,
	})
}

// apiReplay - decode samples from the body like they came from the receiver
func apiReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	var n int
	err := readSamples(r.Body, func(s ir.Sample) {
		queueWait(s)
		n++
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	api.Response(w, n, api.MimeText)
}

func apiProtocols(w http.ResponseWriter, r *http.Request) {
	type protocol struct {
		Name    string `json:"name"`
		Carrier uint32 `json:"carrier"`
	}

	var protocols []protocol
	for _, p := range ir.Protocols() {
		protocols = append(protocols, protocol{Name: p.String(), Carrier: p.Carrier()})
	}

	api.ResponseJSON(w, protocols)
}

func queryCommand(r *http.Request) (cmd ir.Command, err error) {
	query := r.URL.Query()

	// nec:0x12:0x34 format
	if s := query.Get("cmd"); s != "" {
		return ir.ParseCommand(s)
	}

	if cmd.Protocol, err = ir.ParseProtocol(query.Get("protocol")); err != nil {
		return
	}

	device, err := strconv.ParseUint(query.Get("device"), 0, 32)
	if err != nil {
		return cmd, errors.New("ir: wrong device")
	}

	command, err := strconv.ParseUint(query.Get("command"), 0, 32)
	if err != nil {
		return cmd, errors.New("ir: wrong command")
	}

	cmd.Device, cmd.Command = uint32(device), uint32(command)
	return
}

// maxRepeat - about 5 seconds of a held NEC button
const maxRepeat = 50

func queryRepeat(r *http.Request) (int, error) {
	s := r.URL.Query().Get("repeat")
	if s == "" {
		return 0, nil
	}
	return checkRepeat(strconv.Atoi(s))
}

func checkRepeat(i int, err error) (int, error) {
	if err != nil || i < 0 || i > maxRepeat {
		return 0, fmt.Errorf("ir: repeat must be 0..%d", maxRepeat)
	}
	return i, nil
}

func readUint(r *http.Request) (uint32, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 32))
	if err != nil {
		return 0, err
	}
	i, err := strconv.ParseUint(strings.TrimSpace(string(body)), 0, 32)
	return uint32(i), err
}

func saveConfig(value uint32, key string) {
	if err := app.PatchConfig(value, "ir", key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[ir] save config")
	}
}

func sendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ir.ErrUnsupported), errors.Is(err, ir.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ir.ErrNoSender):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		api.Error(w, err)
	}
}
