package ir

import (
	"github.com/AlexxIT/go2ir/internal/api/ws"
	"github.com/AlexxIT/go2ir/pkg/ir"
)

// wsSubscribe - client starts to receive ir/command messages
func wsSubscribe(tr *ws.Transport, _ *ws.Message) error {
	if subscribe(tr) {
		tr.OnClose(func() {
			unsubscribe(tr)
		})
	}
	return nil
}

// wsSend - value is {"protocol": "nec", "device": 18, "command": 52, "repeat": 2},
// repeat is optional
func wsSend(tr *ws.Transport, msg *ws.Message) error {
	var req struct {
		ir.Command
		Repeat int `json:"repeat,omitempty"`
	}
	if err := msg.Unmarshal(&req); err != nil {
		return err
	}
	repeat, err := checkRepeat(req.Repeat, nil)
	if err != nil {
		return err
	}
	if err = transmitter.SendRepeat(req.Command, repeat); err != nil {
		return err
	}
	tr.Write(&ws.Message{Type: "ir/send", Value: req})
	return nil
}
