package app

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
)

var Version = "0.3.0"

var Info = map[string]any{
	"version": Version,
}

func Init() {
	var confs flagConfig
	var version, background bool
	var pidFile, logFile string

	flag.Var(&confs, "config", "go2ir config (path to file, raw YAML or key.sub=value), support multiple")
	if runtime.GOOS != "windows" {
		flag.BoolVar(&background, "daemon", false, "Run program in background")
		flag.StringVar(&pidFile, "pidfile", "", "Daemon PID file path")
		flag.StringVar(&logFile, "logfile", "", "Daemon stdout and stderr file path")
	}
	flag.BoolVar(&version, "version", false, "Print the version of the application and exit")
	flag.Parse()

	if version {
		fmt.Printf("go2ir version %s%s %s/%s\n", Version, revision(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if background {
		if err := daemonize(pidFile, logFile); err != nil {
			fmt.Println("go2ir daemon:", err)
			os.Exit(1)
		}
	}

	initConfig(confs)
	initLogger()

	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	Logger.Info().Str("version", Version).Str("platform", platform).Msg("go2ir")
	Logger.Debug().Str("version", runtime.Version()).Msg("build")

	if ConfigPath != "" {
		Logger.Info().Str("path", ConfigPath).Msg("config")
	}
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) > 7 {
				return " (" + setting.Value[:7] + ")"
			}
			return " (" + setting.Value + ")"
		}
	}
	return ""
}
