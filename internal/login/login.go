// Package login captures a signed-in session without automation: the user
// signs in to an ordinary browser window, and once the studio is reached the
// profile is reopened under control to collect its cookie jar.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/internal/procwin"
	"github.com/evilive3000/apiless-upload/internal/profile"
	"github.com/evilive3000/apiless-upload/internal/studio"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

// Config holds the acquirer's timing knobs.
type Config struct {
	ProfilePrefix string
	// TitleSignal is the window-title fragment that marks a finished sign-in.
	TitleSignal string
	ExecPath    string

	PollInterval         time.Duration
	LoginTimeout         time.Duration
	ExitWait             time.Duration
	ExitSettle           time.Duration
	AccountSelectTimeout time.Duration
	AccountSelectPoll    time.Duration
}

// DefaultConfig returns the timing used by the login command.
func DefaultConfig() Config {
	return Config{
		ProfilePrefix:        common.ProfilePrefix,
		TitleSignal:          "YouTube Studio",
		PollInterval:         time.Second,
		LoginTimeout:         10 * time.Minute,
		ExitWait:             10 * time.Second,
		ExitSettle:           2 * time.Second,
		AccountSelectTimeout: 90 * time.Second,
		AccountSelectPoll:    500 * time.Millisecond,
	}
}

// withDefaults fills unset fields. A zero ExitSettle is kept as "no wait".
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ProfilePrefix == "" {
		c.ProfilePrefix = d.ProfilePrefix
	}
	if c.TitleSignal == "" {
		c.TitleSignal = d.TitleSignal
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.LoginTimeout <= 0 {
		c.LoginTimeout = d.LoginTimeout
	}
	if c.ExitWait <= 0 {
		c.ExitWait = d.ExitWait
	}
	if c.AccountSelectTimeout <= 0 {
		c.AccountSelectTimeout = d.AccountSelectTimeout
	}
	if c.AccountSelectPoll <= 0 {
		c.AccountSelectPoll = d.AccountSelectPoll
	}
	return c
}

// Profiles hands out throwaway browser profiles.
type Profiles interface {
	Acquire(prefix string) (*profile.Profile, error)
	PatchExitState(dir string) error
}

// Acquirer runs the interactive sign-in.
type Acquirer struct {
	Profiles  Profiles
	Launcher  browser.Launcher
	Spawner   browser.Spawner
	Inspector procwin.Inspector
	// Confirm blocks until the user says sign-in is finished. It is only
	// used where window titles cannot be read.
	Confirm  func(ctx context.Context) error
	Progress func(string)
	Log      logger.Logger
	Config   Config
}

func (a *Acquirer) progress(format string, args ...interface{}) {
	if a.Progress != nil {
		a.Progress(fmt.Sprintf(format, args...))
	}
}

// Acquire returns the cookie jar of a freshly signed-in profile. The
// profile is removed before Acquire returns.
func (a *Acquirer) Acquire(ctx context.Context) (cookies.Set, error) {
	cfg := a.Config.withDefaults()
	log := logger.WithComponent(a.Log, "login")

	p, err := a.Profiles.Acquire(cfg.ProfilePrefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := p.Release(); err != nil {
			log.Warning("%v", err)
		}
	}()
	log.Info("using profile %s", p.Dir())

	a.progress("Opening browser, sign in to your account there")
	proc, err := a.Spawner.Spawn(ctx, browser.SpawnOptions{
		ExecPath:    cfg.ExecPath,
		UserDataDir: p.Dir(),
		URL:         studio.StudioURL,
	})
	if err != nil {
		return nil, common.WrapError(common.KindEnvironment, "login.spawn", "could not start browser", err)
	}
	defer func() {
		if !exited(proc) {
			_ = proc.Kill()
		}
	}()

	if err := a.waitForSignIn(ctx, cfg, proc); err != nil {
		return nil, err
	}
	a.progress("Sign-in detected, closing browser")
	a.stopBrowser(ctx, cfg, p.Dir(), proc)

	return a.collect(ctx, cfg, p.Dir())
}

func exited(proc browser.Process) bool {
	select {
	case <-proc.Exited():
		return true
	default:
		return false
	}
}

func errClosedEarly() error {
	return common.NewError(common.KindSessionAcquisition, "login.wait", "browser closed before sign-in finished")
}

func (a *Acquirer) waitForSignIn(ctx context.Context, cfg Config, proc browser.Process) error {
	deadline := time.NewTimer(cfg.LoginTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	log := logger.WithComponent(a.Log, "login")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return common.NewError(common.KindSessionAcquisition, "login.wait",
				fmt.Sprintf("sign-in did not finish within %s", cfg.LoginTimeout))
		case <-proc.Exited():
			return errClosedEarly()
		case <-ticker.C:
		}

		if !a.Inspector.Alive(proc.Pid()) {
			return errClosedEarly()
		}
		title, err := a.Inspector.WindowTitle(ctx, proc.Pid())
		switch {
		case errors.Is(err, procwin.ErrUnsupported):
			log.Info("%v, waiting for confirmation", err)
			return a.waitForConfirm(ctx, proc, deadline.C)
		case err != nil:
			log.Warning("read window title: %v", err)
		case strings.Contains(title, cfg.TitleSignal):
			return nil
		}
	}
}

func (a *Acquirer) waitForConfirm(ctx context.Context, proc browser.Process, deadline <-chan time.Time) error {
	if a.Confirm == nil {
		return common.NewError(common.KindSessionAcquisition, "login.wait",
			"cannot detect sign-in: window titles are unreadable and no confirmation is available")
	}
	a.progress("Press Enter here once you see the studio dashboard")

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Confirm(cctx) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-deadline:
		return common.NewError(common.KindSessionAcquisition, "login.wait", "sign-in was not confirmed in time")
	case <-proc.Exited():
		return errClosedEarly()
	case err := <-done:
		if err != nil {
			return common.WrapError(common.KindSessionAcquisition, "login.wait", "sign-in not confirmed", err)
		}
		return nil
	}
}

// stopBrowser kills the unmanaged browser and, once it has exited, marks
// the profile as cleanly closed so the next launch does not offer to
// restore the crashed session.
func (a *Acquirer) stopBrowser(ctx context.Context, cfg Config, dir string, proc browser.Process) {
	log := logger.WithComponent(a.Log, "login")
	if err := proc.Kill(); err != nil {
		log.Warning("kill browser: %v", err)
	}

	wait := time.NewTimer(cfg.ExitWait)
	defer wait.Stop()
	select {
	case <-proc.Exited():
	case <-wait.C:
		log.Warning("browser did not exit within %s, leaving preferences untouched", cfg.ExitWait)
		return
	case <-ctx.Done():
		return
	}

	if err := sleep(ctx, cfg.ExitSettle); err != nil {
		return
	}
	if err := a.Profiles.PatchExitState(dir); err != nil {
		log.Warning("patch exit state: %v", err)
	}
}

func (a *Acquirer) collect(ctx context.Context, cfg Config, dir string) (set cookies.Set, err error) {
	log := logger.WithComponent(a.Log, "login")

	a.progress("Loading the captured session")
	s, err := a.Launcher.Open(ctx, browser.Options{
		Automation:  true,
		UserDataDir: dir,
		ExecPath:    cfg.ExecPath,
	})
	if err != nil {
		return nil, common.WrapError(common.KindEnvironment, "login.open", "could not start controlled browser", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.Warning("close session: %v", cerr)
		}
	}()

	for _, u := range []string{studio.LoaderURL, studio.HomeURL, studio.StudioURL} {
		if err := s.Navigate(ctx, u); err != nil {
			return nil, common.WrapError(common.KindSessionAcquisition, "login.load", "navigation failed", err).WithTarget(u)
		}
	}
	loc, err := s.Location(ctx)
	if err != nil {
		return nil, common.WrapError(common.KindSessionAcquisition, "login.load", "could not read location", err)
	}
	if !studio.InStudio(loc) && loc != studio.HomeURL {
		return nil, common.NewError(common.KindSessionAcquisition, "login.load", "session could not be loaded").WithTarget(loc)
	}

	a.progress("Choose the channel to upload to")
	if err := s.Navigate(ctx, studio.AccountSelectURL); err != nil {
		return nil, common.WrapError(common.KindSessionAcquisition, "login.account", "navigation failed", err)
	}
	if err := a.waitForHome(ctx, cfg, s); err != nil {
		return nil, err
	}

	set, err = s.Cookies(ctx)
	if err != nil {
		return nil, common.WrapError(common.KindSessionAcquisition, "login.cookies", "could not read cookies", err)
	}
	if len(set) == 0 {
		return nil, common.NewError(common.KindSessionAcquisition, "login.cookies", "browser returned no cookies")
	}
	log.Info("captured %d cookies for %s", len(set), strings.Join(set.Domains(), ", "))
	return set, nil
}

// waitForHome polls until the account chooser lands back on the home page.
func (a *Acquirer) waitForHome(ctx context.Context, cfg Config, s browser.Session) error {
	deadline := time.Now().Add(cfg.AccountSelectTimeout)
	for {
		loc, err := s.Location(ctx)
		if err != nil {
			return common.WrapError(common.KindSessionAcquisition, "login.account", "could not read location", err)
		}
		if loc == studio.HomeURL {
			return nil
		}
		if time.Now().After(deadline) {
			return common.NewError(common.KindElementTimeout, "account selection",
				fmt.Sprintf("no channel chosen within %s", cfg.AccountSelectTimeout)).WithTarget(loc)
		}
		if err := sleep(ctx, cfg.AccountSelectPoll); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
