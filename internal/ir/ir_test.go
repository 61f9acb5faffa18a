package ir

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AlexxIT/go2ir/internal/api/ws"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/pkg/ir"
	"github.com/stretchr/testify/require"
)

type sent struct {
	w       ir.Waveform
	carrier uint32
	mask    uint32
}

func setup(t *testing.T, sender ir.Sender) {
	receiver = ir.NewReceiver(onCommand, ir.ReceiverConfig{})
	receiver.Start()
	t.Cleanup(receiver.Close)

	transmitter = ir.NewTransmitter(sender)
	keys = parseKeys(map[string]string{
		"nec:0x12:0x34": "KEY_POWER",
		"wrong":         "KEY_WRONG",
	})
}

func recorder(calls *[]sent) ir.Sender {
	return ir.SenderFunc(func(w ir.Waveform, carrier, mask uint32) error {
		*calls = append(*calls, sent{append(ir.Waveform(nil), w...), carrier, mask})
		return nil
	})
}

func waveformText(t *testing.T, cmd ir.Command) string {
	w, err := ir.Encode(cmd)
	require.Nil(t, err)

	var sb strings.Builder
	for _, s := range w.Samples() {
		sb.WriteString(strconv.Itoa(int(s)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestParseKeys(t *testing.T) {
	m := parseKeys(map[string]string{
		"nec:0x12:0x34": "KEY_POWER",
		"sony12:1:21":   "KEY_VOLUMEUP",
		"nec:0x12":      "KEY_WRONG",
	})
	require.Equal(t, map[ir.Command]string{
		{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34}: "KEY_POWER",
		{Protocol: ir.ProtocolSony12, Device: 1, Command: 21}:   "KEY_VOLUMEUP",
	}, m)
}

func TestAPISend(t *testing.T) {
	var calls []sent
	setup(t, recorder(&calls))

	w := httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("POST", "/api/ir/send?protocol=nec&device=0x12&command=0x34", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("POST", "/api/ir/send?cmd=sony12:1:21", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, calls, 2)
	require.Equal(t, uint32(38000), calls[0].carrier)
	require.Equal(t, uint32(110000), calls[0].w.Duration())
	require.Equal(t, uint32(40000), calls[1].carrier)

	for query, code := range map[string]int{
		"protocol=foo&device=1&command=1":   http.StatusBadRequest,
		"protocol=nec&device=x&command=1":   http.StatusBadRequest,
		"protocol=nokia&device=1&command=1": http.StatusBadRequest,
		"protocol=jvc&device=256&command=1": http.StatusBadRequest,
	} {
		w = httptest.NewRecorder()
		apiSend(w, httptest.NewRequest("POST", "/api/ir/send?"+query, nil))
		require.Equal(t, code, w.Code, query)
	}

	w = httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("GET", "/api/ir/send?cmd=nec:1:2", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	// rc5 encoder is not implemented, nothing is sent
	w = httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("POST", "/api/ir/send?cmd=rc5:1:2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, calls, 2)
}

func TestAPISendNoTransmitter(t *testing.T) {
	setup(t, nil)

	w := httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("POST", "/api/ir/send?cmd=nec:1:2", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIEncode(t *testing.T) {
	setup(t, nil)

	w := httptest.NewRecorder()
	apiEncode(w, httptest.NewRequest("GET", "/api/ir/encode?protocol=rc6&device=0x12&command=0x34", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Protocol string   `json:"protocol"`
		Device   uint32   `json:"device"`
		Carrier  uint32   `json:"carrier"`
		Duration uint32   `json:"duration"`
		Waveform []uint32 `json:"waveform"`
	}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "rc6", res.Protocol)
	require.Equal(t, uint32(0x12), res.Device)
	require.Equal(t, uint32(36000), res.Carrier)
	require.Equal(t, uint32(106667), res.Duration)
	require.Equal(t, []uint32{2666, 889}, res.Waveform[:2])
}

func TestAPIRaw(t *testing.T) {
	var calls []sent
	setup(t, recorder(&calls))
	transmitter.SetCarrier(56000)
	transmitter.SetTransmitters(2)

	w := httptest.NewRecorder()
	apiRaw(w, httptest.NewRequest("POST", "/api/ir/raw", strings.NewReader("-500\n500\n-1000\n20000\n")))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []sent{{ir.Waveform{500, 500, 1000, 20000}, 56000, 2}}, calls)

	w = httptest.NewRecorder()
	apiRaw(w, httptest.NewRequest("POST", "/api/ir/raw", strings.NewReader("abc")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// trace
	for _, s := range []ir.Sample{-9000, 4500, -560} {
		receiver.Queue(s)
	}
	receiver.Close()

	w = httptest.NewRecorder()
	apiRaw(w, httptest.NewRequest("GET", "/api/ir/raw", nil))
	require.Equal(t, "-9000\n4500\n-560\n", w.Body.String())

	w = httptest.NewRecorder()
	apiRaw(w, httptest.NewRequest("GET", "/api/ir/raw", nil))
	require.Empty(t, w.Body.String())
}

func TestAPICarrier(t *testing.T) {
	setup(t, nil)

	app.ConfigPath = filepath.Join(t.TempDir(), "go2ir.yaml")
	defer func() { app.ConfigPath = "" }()

	w := httptest.NewRecorder()
	apiCarrier(w, httptest.NewRequest("POST", "/api/ir/carrier", strings.NewReader("40000\n")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	apiCarrier(w, httptest.NewRequest("GET", "/api/ir/carrier", nil))
	require.Equal(t, "40000", w.Body.String())

	w = httptest.NewRecorder()
	apiXmitter(w, httptest.NewRequest("POST", "/api/ir/xmitter", strings.NewReader("0x3")))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	apiXmitter(w, httptest.NewRequest("POST", "/api/ir/xmitter", strings.NewReader("0")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	apiXmitter(w, httptest.NewRequest("GET", "/api/ir/xmitter", nil))
	require.Equal(t, "3", w.Body.String())

	b, err := os.ReadFile(app.ConfigPath)
	require.Nil(t, err)
	require.Equal(t, "ir:\n  carrier: 40000\n  xmitter: 3\n", string(b))

	w = httptest.NewRecorder()
	apiCarrier(w, httptest.NewRequest("POST", "/api/ir/carrier", strings.NewReader("fast")))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaySubscribe(t *testing.T) {
	setup(t, nil)

	messages := make(chan *ws.Message, 4)
	tr := &ws.Transport{}
	tr.OnWrite(func(msg any) error {
		messages <- msg.(*ws.Message)
		return nil
	})
	require.Nil(t, wsSubscribe(tr, nil))

	body := waveformText(t, ir.Command{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34})
	w := httptest.NewRecorder()
	apiReplay(w, httptest.NewRequest("POST", "/api/ir/replay", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "68", w.Body.String())

	select {
	case msg := <-messages:
		require.Equal(t, "ir/command", msg.Type)
		event := msg.Value.(*Event)
		require.Equal(t, ir.Command{Protocol: ir.ProtocolNEC, Device: 0x12, Command: 0x34}, event.Command)
		require.Equal(t, "KEY_POWER", event.Key)

		b, err := json.Marshal(event)
		require.Nil(t, err)
		require.Equal(t, `{"protocol":"nec","device":18,"command":52,"key":"KEY_POWER"}`, string(b))
	case <-time.After(time.Second):
		require.Fail(t, "timeout")
	}

	tr.Close()
	subscribersMu.Lock()
	require.Empty(t, subscribers)
	subscribersMu.Unlock()
}

func TestWSSend(t *testing.T) {
	var calls []sent
	setup(t, recorder(&calls))

	var replies []any
	tr := &ws.Transport{}
	tr.OnWrite(func(msg any) error {
		replies = append(replies, msg)
		return nil
	})

	err := wsSend(tr, &ws.Message{Type: "ir/send", Raw: []byte(`{"protocol":"jvc","device":3,"command":23}`)})
	require.Nil(t, err)
	require.Len(t, calls, 1)
	require.Equal(t, uint32(38000), calls[0].carrier)
	require.Len(t, replies, 1)

	err = wsSend(tr, &ws.Message{Type: "ir/send", Raw: []byte(`{"protocol":"itt"}`)})
	require.ErrorIs(t, err, ir.ErrUnsupported)

	err = wsSend(tr, &ws.Message{Type: "ir/send", Raw: []byte(`{"protocol":"tv"}`)})
	require.NotNil(t, err)
}

func TestAPIProtocols(t *testing.T) {
	w := httptest.NewRecorder()
	apiProtocols(w, httptest.NewRequest("GET", "/api/ir/protocols", nil))

	var protocols []struct {
		Name    string `json:"name"`
		Carrier uint32 `json:"carrier"`
	}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &protocols))
	require.Len(t, protocols, len(ir.Protocols()))
	require.Equal(t, "sony12", protocols[0].Name)
	require.Equal(t, uint32(40000), protocols[0].Carrier)
}

func TestAPIInfo(t *testing.T) {
	setup(t, nil)

	w := httptest.NewRecorder()
	apiIR(w, httptest.NewRequest("GET", "/api/ir", nil))
	require.Equal(t, `{"queue":512,"dropped":0,"trace":0,"carrier":38000,"xmitter":1,"decoders":["sony","jvc","nec","rc5","rc6"]}`+"\n", w.Body.String())
}

func TestSendRepeat(t *testing.T) {
	var calls []sent
	setup(t, recorder(&calls))

	w := httptest.NewRecorder()
	apiSend(w, httptest.NewRequest("POST", "/api/ir/send?cmd=nec:0x12:0x34&repeat=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, calls, 1)
	require.Equal(t, uint32(3*110000), calls[0].w.Duration())

	for _, repeat := range []string{"-1", "x", "51"} {
		w = httptest.NewRecorder()
		apiSend(w, httptest.NewRequest("POST", "/api/ir/send?cmd=nec:0x12:0x34&repeat="+repeat, nil))
		require.Equal(t, http.StatusBadRequest, w.Code, repeat)
	}

	tr := &ws.Transport{}
	err := wsSend(tr, &ws.Message{Type: "ir/send", Raw: []byte(`{"protocol":"nec","device":18,"command":52,"repeat":1}`)})
	require.Nil(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, uint32(2*110000), calls[1].w.Duration())
}

func TestEventToggle(t *testing.T) {
	setup(t, nil)

	messages := make(chan *ws.Message, 4)
	tr := &ws.Transport{}
	tr.OnWrite(func(msg any) error {
		messages <- msg.(*ws.Message)
		return nil
	})
	require.Nil(t, wsSubscribe(tr, nil))
	defer tr.Close()

	body := waveformText(t, ir.Command{Protocol: ir.ProtocolRC6, Device: 1, Command: 2})
	w := httptest.NewRecorder()
	apiReplay(w, httptest.NewRequest("POST", "/api/ir/replay", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	select {
	case msg := <-messages:
		b, err := json.Marshal(msg.Value)
		require.Nil(t, err)
		require.Equal(t, `{"protocol":"rc6","device":1,"command":2,"toggle":false}`, string(b))
	case <-time.After(time.Second):
		require.Fail(t, "timeout")
	}
}

func TestSlowSubscriber(t *testing.T) {
	setup(t, nil)

	release := make(chan struct{})
	tr := &ws.Transport{}
	tr.OnWrite(func(msg any) error {
		<-release
		return nil
	})
	require.Nil(t, wsSubscribe(tr, nil))
	require.Nil(t, wsSubscribe(tr, nil)) // second subscribe is ignored

	done := make(chan struct{})
	go func() {
		for i := 0; i < 4*subscriberBuffer; i++ {
			onCommand(ir.Command{Protocol: ir.ProtocolNEC, Device: 1, Command: 2})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "decoder is blocked by a subscriber")
	}

	close(release)
	tr.Close()

	subscribersMu.Lock()
	require.Empty(t, subscribers)
	subscribersMu.Unlock()
}
