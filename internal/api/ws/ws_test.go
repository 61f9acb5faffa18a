package ws

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestWebSocket(t *testing.T) {
	initWS("")

	HandleFunc("test/echo", func(tr *Transport, msg *Message) error {
		var value struct {
			Carrier uint32 `json:"carrier"`
		}
		if err := msg.Unmarshal(&value); err != nil {
			return err
		}
		tr.Write(&Message{Type: "test/echo", Value: value.Carrier})
		return nil
	})
	HandleFunc("test/fail", func(tr *Transport, msg *Message) error {
		return errors.New("boom")
	})

	server := httptest.NewServer(http.HandlerFunc(apiWS))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.Nil(t, err)
	defer conn.Close()

	var msg map[string]any

	require.Nil(t, conn.WriteJSON(map[string]any{"type": "test/echo", "value": map[string]any{"carrier": 38000}}))
	require.Nil(t, conn.ReadJSON(&msg))
	require.Equal(t, map[string]any{"type": "test/echo", "value": float64(38000)}, msg)

	require.Nil(t, conn.WriteJSON(map[string]any{"type": "test/fail"}))
	require.Nil(t, conn.ReadJSON(&msg))
	require.Equal(t, map[string]any{"type": "error", "value": "test/fail: boom"}, msg)

	require.Nil(t, conn.WriteJSON(map[string]any{"type": "test/unknown"}))
	require.Nil(t, conn.ReadJSON(&msg))
	require.Equal(t, "error", msg["type"])
}

func TestCheckOrigin(t *testing.T) {
	initWS("")

	r := httptest.NewRequest("GET", "/api/ws", nil)
	r.Host = "192.168.1.2"
	r.Header.Set("Origin", "http://192.168.1.2:8123")
	require.True(t, upgrader.CheckOrigin(r))

	r.Header.Set("Origin", "http://evil.example")
	require.False(t, upgrader.CheckOrigin(r))

	initWS("*")
	require.True(t, upgrader.CheckOrigin(r))
}

func TestTransportClose(t *testing.T) {
	tr := &Transport{}

	var n int
	tr.OnClose(func() { n++ })
	tr.Close()
	require.Equal(t, 1, n)

	tr.OnClose(func() { n++ })
	require.Equal(t, 2, n)

	// write after close is ignored
	tr.OnWrite(func(msg any) error {
		n++
		return nil
	})
	tr.Write("x")
	require.Equal(t, 2, n)
}
