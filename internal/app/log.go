package app

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var Logger zerolog.Logger

// MemoryLog keeps the last records for the api/log handler
var MemoryLog = newRingLog(1000)

// modules log levels and logger settings
var modules = map[string]string{
	"format": "",
	"level":  "info",
	"output": "stdout",
	"time":   zerolog.TimeFormatUnixMs,
}

// GetLogger - logger with the level from the `log` section, `log.ir: debug` for example
func GetLogger(module string) zerolog.Logger {
	if s, ok := modules[module]; ok {
		lvl, err := zerolog.ParseLevel(s)
		if err == nil {
			return Logger.Level(lvl)
		}
		Logger.Warn().Err(err).Caller().Send()
	}

	return Logger
}

// initLogger support:
// - output: empty (only to memory), stderr, stdout
// - format: empty (autodetect color support), color, json, text
// - time:   empty (disable timestamp), UNIXMS, UNIXMICRO, UNIXNANO
// - level:  disabled, trace, debug, info, warn, error...
func initLogger() {
	var cfg struct {
		Mod map[string]string `yaml:"log"`
	}

	cfg.Mod = modules // defaults

	LoadConfig(&cfg)

	var writer io.Writer

	switch modules["output"] {
	case "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	}

	Logger = NewLogger(writer, modules["format"], modules["level"], modules["time"])
}

func NewLogger(out io.Writer, format, level, timeFormat string) zerolog.Logger {
	writer := io.Writer(MemoryLog)

	if out != nil {
		if format != "json" {
			console := &zerolog.ConsoleWriter{Out: out}

			switch format {
			case "text":
				console.NoColor = true
			case "color":
			default:
				// color only for terminals
				if f, ok := out.(*os.File); ok {
					console.NoColor = !isatty.IsTerminal(f.Fd())
				} else {
					console.NoColor = true
				}
			}

			if timeFormat != "" {
				console.TimeFormat = "15:04:05.000"
			} else {
				console.PartsOrder = []string{
					zerolog.LevelFieldName,
					zerolog.CallerFieldName,
					zerolog.MessageFieldName,
				}
			}

			out = console
		}

		writer = zerolog.MultiLevelWriter(out, MemoryLog)
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(writer).Level(lvl)

	if timeFormat != "" {
		zerolog.TimeFieldFormat = timeFormat
		logger = logger.With().Timestamp().Logger()
	}

	return logger
}

// ringLog - fixed number of JSON records, the oldest is overwritten
type ringLog struct {
	lines [][]byte
	w     int
	full  bool
	mu    sync.Mutex
}

func newRingLog(size int) *ringLog {
	return &ringLog{lines: make([][]byte, size)}
}

// Write - zerolog calls it once per record
func (r *ringLog) Write(p []byte) (int, error) {
	r.mu.Lock()
	r.lines[r.w] = append(r.lines[r.w][:0], p...)
	if r.w++; r.w == len(r.lines) {
		r.w = 0
		r.full = true
	}
	r.mu.Unlock()
	return len(p), nil
}

func (r *ringLog) WriteTo(w io.Writer) (n int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := 0
	if r.full {
		i = r.w
	}

	for k := 0; k < r.count(); k++ {
		var nn int
		if nn, err = w.Write(r.lines[(i+k)%len(r.lines)]); err != nil {
			return
		}
		n += int64(nn)
	}
	return
}

// count - number of records, call with lock
func (r *ringLog) count() int {
	if r.full {
		return len(r.lines)
	}
	return r.w
}

func (r *ringLog) Reset() {
	r.mu.Lock()
	r.w = 0
	r.full = false
	r.mu.Unlock()
}
