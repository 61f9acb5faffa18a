package ir

import (
	"sync"

	"github.com/AlexxIT/go2ir/internal/api"
	"github.com/AlexxIT/go2ir/internal/api/ws"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/pkg/ir"
	"github.com/rs/zerolog"
)

type Config struct {
	Receiver    string            `yaml:"receiver"`
	Transmitter string            `yaml:"transmitter"`
	Queue       int               `yaml:"queue"`
	Trace       int               `yaml:"trace"`
	Carrier     uint32            `yaml:"carrier"`
	Xmitter     uint32            `yaml:"xmitter"`
	Keys        map[string]string `yaml:"keys"`
}

func Init() {
	var cfg struct {
		Mod Config `yaml:"ir"`
	}

	// default config
	cfg.Mod.Carrier = 38000
	cfg.Mod.Xmitter = 1

	app.LoadConfig(&cfg)

	log = app.GetLogger("ir")

	if err := start(cfg.Mod); err != nil {
		log.Error().Err(err).Msg("[ir] start")
	}

	api.HandleFunc("api/ir", apiIR)
	api.HandleFunc("api/ir/raw", apiRaw)
	api.HandleFunc("api/ir/carrier", apiCarrier)
	api.HandleFunc("api/ir/xmitter", apiXmitter)
	api.HandleFunc("api/ir/send", apiSend)
	api.HandleFunc("api/ir/encode", apiEncode)
	api.HandleFunc("api/ir/replay", apiReplay)
	api.HandleFunc("api/ir/protocols", apiProtocols)

	ws.HandleFunc("ir/subscribe", wsSubscribe)
	ws.HandleFunc("ir/send", wsSend)
}

var log zerolog.Logger

var (
	receiver    *ir.Receiver
	transmitter *ir.Transmitter
	keys        map[ir.Command]string
	sources     []source
)

// start builds the receiver and transmitter from config and runs the producer.
// Transmitter exists even without a device, sends fail with ir.ErrNoSender.
func start(cfg Config) (err error) {
	keys = parseKeys(cfg.Keys)

	receiver = ir.NewReceiver(onCommand, ir.ReceiverConfig{
		QueueSize: cfg.Queue,
		TraceSize: cfg.Trace,
	})
	receiver.Start()

	var sender ir.Sender
	if cfg.Transmitter != "" {
		if sender, err = openSender(cfg.Transmitter); err != nil {
			log.Error().Err(err).Str("url", cfg.Transmitter).Msg("[ir] transmitter")
			sender = nil
		}
	}

	transmitter = ir.NewTransmitter(sender)
	transmitter.SetCarrier(cfg.Carrier)
	transmitter.SetTransmitters(cfg.Xmitter)

	if cfg.Receiver != "" {
		src, err := openSource(cfg.Receiver)
		if err != nil {
			return err
		}
		sources = append(sources, src)
		go run(src)
	}

	return nil
}

// Close stops producers and drains the queue
func Close() {
	for _, src := range sources {
		_ = src.Close()
	}
	sources = nil

	if receiver != nil {
		receiver.Close()
	}
}

func parseKeys(items map[string]string) map[ir.Command]string {
	m := make(map[ir.Command]string, len(items))
	for k, v := range items {
		cmd, err := ir.ParseCommand(k)
		if err != nil {
			log.Warn().Err(err).Msg("[ir] keys")
			continue
		}
		m[cmd] = v
	}
	return m
}

// Event - decoded command for logs and subscribers
type Event struct {
	ir.Command
	Key    string `json:"key,omitempty"`
	Toggle *bool  `json:"toggle,omitempty"` // rc6 only, flips on every new key press
}

// onCommand runs in the receiver goroutine, same as decoders
func onCommand(cmd ir.Command) {
	event := &Event{Command: cmd, Key: keys[cmd]}

	if cmd.Protocol == ir.ProtocolRC6 {
		for _, decoder := range receiver.Decoders() {
			if rc6, ok := decoder.(*ir.RC6); ok {
				toggle := rc6.Toggle()
				event.Toggle = &toggle
				break
			}
		}
	}

	log.Debug().Str("cmd", cmd.String()).Str("key", event.Key).Msg("[ir] command")

	broadcast(event)
}

// subscribers - every client has its own buffered channel and writer goroutine,
// the decoder never waits for a slow WebSocket
var subscribers = map[*ws.Transport]chan *ws.Message{}
var subscribersMu sync.Mutex

const subscriberBuffer = 16

// subscribe returns false if the client is already subscribed
func subscribe(tr *ws.Transport) bool {
	subscribersMu.Lock()
	defer subscribersMu.Unlock()

	if _, ok := subscribers[tr]; ok {
		return false
	}

	ch := make(chan *ws.Message, subscriberBuffer)
	subscribers[tr] = ch

	go func() {
		for msg := range ch {
			tr.Write(msg)
		}
	}()

	return true
}

func unsubscribe(tr *ws.Transport) {
	subscribersMu.Lock()
	if ch, ok := subscribers[tr]; ok {
		close(ch)
		delete(subscribers, tr)
	}
	subscribersMu.Unlock()
}

func broadcast(event *Event) {
	msg := &ws.Message{Type: "ir/command", Value: event}

	subscribersMu.Lock()
	for tr, ch := range subscribers {
		select {
		case ch <- msg:
		default:
			log.Warn().Str("remote", remoteAddr(tr)).Msg("[ir] subscriber is too slow, event dropped")
		}
	}
	subscribersMu.Unlock()
}

func remoteAddr(tr *ws.Transport) string {
	if tr.Request != nil {
		return tr.Request.RemoteAddr
	}
	return ""
}
