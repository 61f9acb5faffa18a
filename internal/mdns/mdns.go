package mdns

import (
	"os"
	"strings"

	"github.com/AlexxIT/go2ir/internal/api"
	"github.com/AlexxIT/go2ir/internal/app"
	"github.com/AlexxIT/go2ir/pkg/mdns"
)

func Init() {
	var cfg struct {
		Mod struct {
			Name string `yaml:"name"`
		} `yaml:"mdns"`
	}

	cfg.Mod.Name = defaultName()

	app.LoadConfig(&cfg)

	log := app.GetLogger("mdns")

	if cfg.Mod.Name == "" || api.Port == 0 {
		return
	}

	service, err := mdns.NewService(cfg.Mod.Name, api.Port, nil, txt())
	if err != nil {
		log.Error().Err(err).Msg("[mdns] service")
		return
	}

	if _, err = mdns.NewServer(service); err != nil {
		log.Error().Err(err).Msg("[mdns] server")
		return
	}

	log.Info().Str("name", cfg.Mod.Name).Int("port", api.Port).Msg("[mdns] " + mdns.ServiceType)
}

func defaultName() string {
	host, err := os.Hostname()
	if err != nil {
		return "go2ir"
	}
	host, _, _ = strings.Cut(host, ".")
	return "go2ir-" + host
}

func txt() []string {
	return []string{"version=" + app.Version, "api=/api/ir"}
}
