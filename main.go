package main

import (
	"github.com/AlexxIT/go2ir/internal/api"
	"github.com/AlexxIT/go2ir/internal/api/ws"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/internal/ir"
	"github.com/AlexxIT/go2ir/internal/mdns"
	"github.com/AlexxIT/go2ir/pkg/shell"
)

func main() {
	app.Init() // init config and logs

	// 1. Core modules: app, api/ws

	api.Init() // init API before all others
	ws.Init()  // init WS API endpoint

	// 2. IR receiver and transmitter

	ir.Init()

	// 3. Discovery

	mdns.Init() // after api, needs the listen port

	sig := shell.RunUntilSignal()
	app.Logger.Info().Str("signal", sig.String()).Msg("exit")

	ir.Close()
	app.Close()
}
