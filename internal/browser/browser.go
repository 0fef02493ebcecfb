// Package browser is the narrow surface the login and upload flows need
// from a real browser: a controlled session driven over the DevTools
// protocol, and an unmanaged process started like a user would start it.
package browser

import (
	"context"
	"errors"

	"github.com/evilive3000/apiless-upload/internal/cookies"
)

// ErrNoSuchElement is returned when a selector matches fewer elements than
// the requested index requires.
var ErrNoSuchElement = errors.New("no such element")

// Options configures a controlled session.
type Options struct {
	Headless bool
	// Automation adds the enable-automation switch. The login flow turns it
	// on; uploads leave it off.
	Automation  bool
	UserDataDir string
	ExecPath    string
	// Zero means 1920x1080, which keeps the wizard's done button inside
	// the viewport.
	WindowWidth  int
	WindowHeight int
}

func (o Options) windowSize() (int, int) {
	w, h := o.WindowWidth, o.WindowHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return w, h
}

// Launcher opens controlled sessions.
type Launcher interface {
	Open(ctx context.Context, opts Options) (Session, error)
}

// Session is one controlled browser instance. Calls are made by a single
// goroutine; implementations need not be safe for concurrent use. The
// opener owns the session and must Close it.
//
// Selectors are CSS. nth is a zero-based index into the matches.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	// Count returns how many elements match sel right now, without waiting.
	Count(ctx context.Context, sel string) (int, error)
	Click(ctx context.Context, sel string, nth int) error
	SetFiles(ctx context.Context, sel string, nth int, paths ...string) error
	// InsertText focuses the element, clears it and inserts text the way
	// typing would, so emoji and other non-BMP characters survive.
	InsertText(ctx context.Context, sel string, nth int, text string) error
	// Text returns the rendered text of the first match.
	Text(ctx context.Context, sel string) (string, error)
	// Attribute reads an attribute of the first match. ok is false when
	// the element exists but lacks the attribute.
	Attribute(ctx context.Context, sel, name string) (value string, ok bool, err error)
	// Eval runs script and decodes its result into res (nil discards it).
	Eval(ctx context.Context, script string, res interface{}) error
	Cookies(ctx context.Context) (cookies.Set, error)
	SetCookie(ctx context.Context, c cookies.Cookie) error
	Close() error
}

// SpawnOptions configures an unmanaged browser process.
type SpawnOptions struct {
	ExecPath    string
	UserDataDir string
	URL         string
}

// Spawner starts unmanaged browser processes: no automation switches and
// no remote debugging port, so sign-in pages see an ordinary browser.
type Spawner interface {
	Spawn(ctx context.Context, opts SpawnOptions) (Process, error)
}

// Process is a running unmanaged browser.
type Process interface {
	Pid() int
	Kill() error
	// Exited is closed once the process has been reaped.
	Exited() <-chan struct{}
}
