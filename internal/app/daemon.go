package app

import (
	"fmt"
	"os"

	daemon "github.com/sevlyar/go-daemon"
)

var release = func() error { return nil }

// daemonize re-runs the program in background with the same arguments.
// The parent prints the child pid and exits, the child continues.
func daemonize(pidFile, logFile string) error {
	cntxt := newDaemonContext(pidFile, logFile)

	child, err := cntxt.Reborn()
	if err != nil {
		return err
	}
	if child != nil {
		fmt.Println("go2ir daemon started with pid", child.Pid)
		os.Exit(0)
	}

	release = cntxt.Release
	return nil
}

// newDaemonContext - child keeps the working dir, so relative config paths still work.
// Empty logFile sends stdout and stderr of the child to /dev/null.
func newDaemonContext(pidFile, logFile string) *daemon.Context {
	workDir, _ := os.Getwd()

	return &daemon.Context{
		PidFileName: pidFile,
		PidFilePerm: 0644,
		LogFileName: logFile,
		LogFilePerm: 0640,
		WorkDir:     workDir,
		Umask:       027,
	}
}

// Close removes the pid file of the daemon
func Close() {
	if err := release(); err != nil {
		Logger.Warn().Err(err).Msg("[app] release pid file")
	}
}
