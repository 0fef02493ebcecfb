package cmd

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/internal/login"
	"github.com/evilive3000/apiless-upload/internal/procwin"
	"github.com/evilive3000/apiless-upload/internal/studio"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

// Swapped by tests.
var (
	appFs  afero.Fs  = afero.NewOsFs()
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	findChrome  = browser.FindChrome
	newLauncher = func(l logger.Logger, debug bool) browser.Launcher {
		cl := browser.NewChromeLauncher(l)
		cl.Debug = debug
		return cl
	}
	newSpawner   = func() browser.Spawner { return browser.NewExecSpawner() }
	newInspector = func() procwin.Inspector { return procwin.New() }

	importFromBrowser = cookies.ImportFromBrowser

	loginConfig     = login.DefaultConfig
	uploadTiming    = studio.DefaultTiming
	validatorSettle = time.Second
)

// cmdEnv is the per-command ambient setup: logging and the browser.
type cmdEnv struct {
	log   logger.Logger
	debug bool
}

func newEnv(c *cli.Context) (*cmdEnv, error) {
	debug := c.Bool("debug")
	console := logger.Verbose(logger.NewConsoleLogger(stderr), debug)
	loggers := []logger.Logger{console}
	if path := c.String("log-file"); path != "" {
		fl, err := logger.NewFileLogger(path)
		if err != nil {
			return nil, common.WrapError(common.KindEnvironment, "log", "could not open log file", err).WithTarget(path)
		}
		loggers = append(loggers, fl)
	}
	return &cmdEnv{log: logger.NewMultiLogger(loggers...), debug: debug}, nil
}

func (r *cmdEnv) launcher() browser.Launcher {
	return newLauncher(r.log, r.debug)
}

// chrome resolves the browser executable. Controlled sessions can fall
// back to chromedp's own lookup, the unmanaged login window cannot.
func (r *cmdEnv) chrome(c *cli.Context, required bool) (string, error) {
	if p := c.String("chrome"); p != "" {
		return p, nil
	}
	p, err := findChrome()
	if err != nil {
		if required {
			return "", common.WrapError(common.KindEnvironment, "chrome", "no browser to open", err)
		}
		r.log.Info("%v, leaving the lookup to chromedp", err)
		return "", nil
	}
	return p, nil
}

func (r *cmdEnv) close() {
	if err := r.log.Close(); err != nil {
		printErr("close log: %v", err)
	}
}

func printErr(format string, args ...interface{}) {
	log.New(stderr, "", 0).Printf(format, args...)
}
