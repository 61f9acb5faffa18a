package ws

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AlexxIT/go2ir/internal/api"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func Init() {
	var cfg struct {
		Mod struct {
			Origin string `yaml:"origin"`
		} `yaml:"api"`
	}

	app.LoadConfig(&cfg)

	log = app.GetLogger("api")

	initWS(cfg.Mod.Origin)

	api.HandleFunc("api/ws", apiWS)
}

var log zerolog.Logger

// Message - struct for data exchange in Web API
type Message struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Raw   []byte `json:"-"`
}

func (m *Message) Unmarshal(v any) error {
	return json.Unmarshal(m.Raw, v)
}

type WSHandler func(tr *Transport, msg *Message) error

func HandleFunc(msgType string, handler WSHandler) {
	handlersMu.Lock()
	handlers[msgType] = handler
	handlersMu.Unlock()
}

var handlers = map[string]WSHandler{}
var handlersMu sync.RWMutex

var upgrader *websocket.Upgrader

func initWS(origin string) {
	upgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	switch origin {
	case "":
		// same origin, port is ignored
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header["Origin"]
			if len(origin) == 0 {
				return true
			}
			o, err := url.Parse(origin[0])
			if err != nil {
				return false
			}
			if o.Host == r.Host {
				return true
			}
			log.Trace().Msgf("[api] ws origin=%s, host=%s", o.Host, r.Host)
			host, _, _ := strings.Cut(o.Host, ":")
			return host == r.Host
		}
	case "*":
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

func apiWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Caller().Msgf("host=%s origin=%s", r.Host, r.Header.Get("Origin"))
		return
	}

	tr := &Transport{Request: r}
	tr.OnWrite(func(msg any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second * 5))
		return conn.WriteJSON(msg)
	})

	for {
		var raw struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err = conn.ReadJSON(&raw); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Trace().Err(err).Caller().Send()
			}
			_ = conn.Close()
			break
		}

		msg := &Message{Type: raw.Type, Raw: raw.Value}

		log.Trace().Str("type", msg.Type).Msg("[api] ws msg")

		handlersMu.RLock()
		handler := handlers[msg.Type]
		handlersMu.RUnlock()

		if handler == nil {
			tr.Write(&Message{Type: "error", Value: "unknown message type: " + msg.Type})
			continue
		}

		if err := handler(tr, msg); err != nil {
			tr.Write(&Message{Type: "error", Value: msg.Type + ": " + err.Error()})
		}
	}

	tr.Close()
}

// Transport - one WebSocket client. Writes are serialized, close hooks run
// once when the connection is gone.
type Transport struct {
	Request *http.Request

	closed bool
	mu     sync.Mutex
	wrmu   sync.Mutex

	onWrite func(msg any) error
	onClose []func()
}

func (t *Transport) OnWrite(f func(msg any) error) {
	t.mu.Lock()
	t.onWrite = f
	t.mu.Unlock()
}

func (t *Transport) Write(msg any) {
	t.mu.Lock()
	write, closed := t.onWrite, t.closed
	t.mu.Unlock()

	if write == nil || closed {
		return
	}

	t.wrmu.Lock()
	if err := write(msg); err != nil {
		log.Trace().Err(err).Caller().Send()
	}
	t.wrmu.Unlock()
}

func (t *Transport) Close() {
	t.mu.Lock()
	onClose := t.onClose
	t.onClose = nil
	t.closed = true
	t.mu.Unlock()

	for _, f := range onClose {
		f()
	}
}

// OnClose - run f on close, immediately if already closed
func (t *Transport) OnClose(f func()) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		f()
		return
	}
	t.onClose = append(t.onClose, f)
	t.mu.Unlock()
}
