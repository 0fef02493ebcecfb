// Package common holds the helpers shared by ytupload's CLI commands: help
// and version output, error printing, exit codes and the progress spinner.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	appcommon "github.com/evilive3000/apiless-upload/common"
)

// VersionCmdStr is filled in by Execute from the build arguments.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// Exit codes per error kind.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitValidation         = 2
	ExitSessionAcquisition = 20
	ExitInvalidSession     = 21
	ExitEnvironment        = 30
	ExitElementTimeout     = 40
	ExitProgramming        = 70
	ExitInterrupted        = 130
)

// ExitCode maps err to the process exit status. The outermost classified
// kind decides.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch appcommon.KindOf(err) {
	case appcommon.KindValidation:
		return ExitValidation
	case appcommon.KindSessionAcquisition:
		return ExitSessionAcquisition
	case appcommon.KindInvalidSession:
		return ExitInvalidSession
	case appcommon.KindEnvironment:
		return ExitEnvironment
	case appcommon.KindElementTimeout:
		return ExitElementTimeout
	case appcommon.KindProgramming:
		return ExitProgramming
	}
	return ExitFailure
}

// Spinner renders progress lines as a single spinning status line.
type Spinner struct {
	p   *mpb.Progress
	bar *mpb.Bar
	w   io.Writer

	mu   sync.Mutex
	last string
}

// InitSpinner starts a spinner labelled name writing to w.
func InitSpinner(w io.Writer, name string) *Spinner {
	s := &Spinner{w: w}
	s.p = mpb.New(mpb.WithOutput(w), mpb.WithWidth(1))
	s.bar = s.p.New(0,
		mpb.SpinnerStyle(),
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string { return s.message() }),
		),
	)
	return s
}

func (s *Spinner) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Update replaces the status line. It matches the progress sink signature.
func (s *Spinner) Update(line string) {
	s.mu.Lock()
	s.last = line
	s.mu.Unlock()
}

// Stop removes the spinner and prints the last status line.
func (s *Spinner) Stop() {
	s.bar.SetTotal(-1, true)
	s.p.Wait()
	if last := s.message(); last != "" {
		fmt.Fprintln(s.w, last)
	}
}

// Help displays the application help, or the help of the named command.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Printf("%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	err := showCommandHelp(ctx, arg)
	if err != nil {
		return err
	}
	return nil
}

// GetVersion prints the version string built by the app.
func GetVersion(ctx *cli.Context) error {
	fmt.Println(VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints an error that happened while running action of
// cmd. ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Println("err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Fprintf(os.Stderr, "%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			err := showCommandHelp(ctx, ctx.Command.Name)
			if err != nil {
				fmt.Println(err.Error())
			}
		},
	)
}

// PrintErrWithHelp prints err followed by the application help and exits
// with status 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			showAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	if strings.Contains(estr, "-version") {
		return GetVersion(ctx)
	}
	fmt.Printf("%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook of the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// UsageError shows the command help and returns msg as a validation error
// so the process exits with ExitValidation.
func UsageError(ctx *cli.Context, msg string) error {
	if err := showCommandHelp(ctx, ctx.Command.Name); err != nil {
		fmt.Println(err.Error())
	}
	return appcommon.NewError(appcommon.KindValidation, ctx.Command.Name, msg)
}

// Beaut centers s in a field of width n.
func Beaut(s string, n int) (b string) {
	n1 := len(s)
	x := n - n1
	if x < 0 {
		return s
	}
	x1 := x / 2
	w := string(
		replic(' ', x1),
	)
	b = w
	b += s
	b += w
	if x%2 != 0 {
		b += " "
	}
	return
}

func replic[aT any](v aT, n int) []aT {
	a := make([]aT, n)
	for i := range a {
		a[i] = v
	}
	return a
}
