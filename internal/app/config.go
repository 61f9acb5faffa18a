package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/AlexxIT/go2ir/pkg/shell"
	"github.com/AlexxIT/go2ir/pkg/yaml"
)

var ConfigPath string

var configs [][]byte
var configMu sync.Mutex

// LoadConfig - unmarshal all config sources in order, later ones win
func LoadConfig(v any) {
	for _, data := range configs {
		if err := yaml.Unmarshal(data, v); err != nil {
			Logger.Warn().Err(err).Msg("[app] read config")
		}
	}
}

// PatchConfig - save value to the config file, nil removes the key.
// Path is the list of keys from the root, `ir`, `carrier` for example.
func PatchConfig(value any, path ...string) error {
	if ConfigPath == "" {
		return errors.New("config file disabled")
	}

	configMu.Lock()
	defer configMu.Unlock()

	// empty config is OK
	b, _ := os.ReadFile(ConfigPath)

	b, err := yaml.Patch(b, value, path...)
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath, b, 0644)
}

// ReadConfig - content of the config file as is, without env replacing
func ReadConfig() ([]byte, error) {
	if ConfigPath == "" {
		return nil, errors.New("config file disabled")
	}
	return os.ReadFile(ConfigPath)
}

type flagConfig []string

func (c *flagConfig) String() string {
	return strings.Join(*c, " ")
}

func (c *flagConfig) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func initConfig(confs flagConfig) {
	configs = nil

	if confs == nil {
		confs = []string{"go2ir.yaml"}
	}

	for _, conf := range confs {
		switch {
		case conf == "":
		case conf[0] == '{' || strings.IndexByte(conf, '\n') >= 0:
			// config as raw YAML or JSON
			configs = append(configs, []byte(conf))
		case parseConfString(conf) != nil:
			configs = append(configs, parseConfString(conf))
		default:
			// config as file
			if ConfigPath == "" {
				ConfigPath = conf
			}

			data, _ := os.ReadFile(conf)
			if data == nil {
				continue
			}

			configs = append(configs, []byte(shell.ReplaceEnvVars(string(data))))
		}
	}

	if ConfigPath != "" {
		if !filepath.IsAbs(ConfigPath) {
			if cwd, err := os.Getwd(); err == nil {
				ConfigPath = filepath.Join(cwd, ConfigPath)
			}
		}
		Info["config_path"] = ConfigPath
	}
}

// parseConfString - `ir.carrier=40000` => `{ir: {carrier: 40000}}`
func parseConfString(s string) []byte {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return nil
	}

	items := strings.Split(key, ".")
	if len(items) < 2 {
		return nil
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString("{" + item + ": ")
	}
	b.WriteString(value)
	b.WriteString(strings.Repeat("}", len(items)))

	return []byte(b.String())
}
