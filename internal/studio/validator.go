package studio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

// Validator tells whether a cookie set still opens the studio.
type Validator struct {
	Launcher browser.Launcher
	Log      logger.Logger
	ExecPath string
	// Settle is the wait after opening the studio before the location is
	// read.
	Settle time.Duration
}

// NewValidator returns a Validator that lets the studio settle for a second.
func NewValidator(l browser.Launcher, log logger.Logger) *Validator {
	return &Validator{Launcher: l, Log: log, Settle: time.Second}
}

// IsValid never fails: every problem, including a panic in the browser
// layer, is logged and reported as an invalid set.
func (v *Validator) IsValid(ctx context.Context, set cookies.Set) (ok bool) {
	if len(set) == 0 {
		return false
	}
	log := logger.WithComponent(v.Log, "check")
	defer func() {
		if p := recover(); p != nil {
			log.Warning("cookie check aborted: %v", p)
			ok = false
		}
	}()

	ok, err := v.check(ctx, set)
	if err != nil {
		log.Warning("cookie check failed for %s: %v", strings.Join(set.Names(), ","), err)
		return false
	}
	return ok
}

func (v *Validator) check(ctx context.Context, set cookies.Set) (bool, error) {
	s, err := v.Launcher.Open(ctx, browser.Options{Headless: true, ExecPath: v.ExecPath})
	if err != nil {
		return false, err
	}
	defer func() { _ = s.Close() }()

	if err := s.Navigate(ctx, GoogleURL); err != nil {
		return false, err
	}
	for _, c := range set {
		if err := s.SetCookie(ctx, c); err != nil {
			return false, fmt.Errorf("set cookie %s: %w", c.Name, err)
		}
	}
	if err := s.Navigate(ctx, StudioURL); err != nil {
		return false, err
	}
	if v.Settle > 0 {
		t := time.NewTimer(v.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return false, ctx.Err()
		case <-t.C:
		}
	}
	loc, err := s.Location(ctx)
	if err != nil {
		return false, err
	}
	return InStudio(loc), nil
}
