// Package browsertest provides in-memory fakes of the browser package's
// interfaces. A Session is scripted with element counts, text sequences and
// click hooks, and records every call for assertions.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/cookies"
)

// Call is one recorded session call.
type Call struct {
	Op    string
	Sel   string
	Nth   int
	Value string
}

func (c Call) String() string {
	if c.Sel == "" {
		return c.Op + " " + c.Value
	}
	return fmt.Sprintf("%s %s[%d] %s", c.Op, c.Sel, c.Nth, c.Value)
}

// Session is a scriptable browser.Session.
type Session struct {
	mu sync.Mutex

	// URL is the current location.
	URL string
	// Redirects maps a navigation target to the location it lands on.
	Redirects map[string]string
	// Counts is the number of matches per selector.
	Counts map[string]int
	// Texts holds successive Text results per selector; the last one
	// repeats once the sequence is exhausted.
	Texts map[string][]string
	// Attrs holds attribute values per selector and attribute name.
	Attrs map[string]map[string]string
	// OnClick runs after a click on the selector succeeded.
	OnClick map[string]func(s *Session, nth int)
	// OnNavigate runs after every navigation.
	OnNavigate func(s *Session, url string)
	// EvalFunc answers Eval calls; nil makes Eval a recorded no-op.
	EvalFunc func(script string, res interface{}) error
	// Jar is returned by Cookies; SetCookie appends to Injected.
	Jar cookies.Set

	// Errors injected per operation ("navigate", "click", "setcookie",
	// "count", "location", "cookies", "text", "insert", "files").
	Fail map[string]error

	Calls       []Call
	Navigations []string
	Injected    cookies.Set
	Inserted    map[string][]string
	Closed      bool
	CloseCount  int
}

// NewSession returns a session at about:blank.
func NewSession() *Session {
	return &Session{
		URL:       "about:blank",
		Redirects: map[string]string{},
		Counts:    map[string]int{},
		Texts:     map[string][]string{},
		Attrs:     map[string]map[string]string{},
		OnClick:   map[string]func(*Session, int){},
		Fail:      map[string]error{},
		Inserted:  map[string][]string{},
	}
}

func (s *Session) record(c Call) {
	s.Calls = append(s.Calls, c)
}

func (s *Session) fail(op string) error {
	if s.Closed {
		return fmt.Errorf("%s on closed session", op)
	}
	return s.Fail[op]
}

// SetCount sets the match count for sel. Safe to call from hooks.
func (s *Session) SetCount(sel string, n int) {
	s.Counts[sel] = n
}

// SetAttr sets an attribute value for sel. Safe to call from hooks.
func (s *Session) SetAttr(sel, name, value string) {
	if s.Attrs[sel] == nil {
		s.Attrs[sel] = map[string]string{}
	}
	s.Attrs[sel][name] = value
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record(Call{Op: "navigate", Value: url})
	if err := s.fail("navigate"); err != nil {
		return err
	}
	s.Navigations = append(s.Navigations, url)
	s.URL = url
	if to, ok := s.Redirects[url]; ok {
		s.URL = to
	}
	if s.OnNavigate != nil {
		s.OnNavigate(s, url)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("location"); err != nil {
		return "", err
	}
	return s.URL, nil
}

func (s *Session) Count(ctx context.Context, sel string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.fail("count"); err != nil {
		return 0, err
	}
	return s.Counts[sel], nil
}

func (s *Session) present(sel string, nth int) error {
	if nth < 0 || nth >= s.Counts[sel] {
		return fmt.Errorf("%w: %s[%d]", browser.ErrNoSuchElement, sel, nth)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, sel string, nth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click(sel, nth)
}

func (s *Session) click(sel string, nth int) error {
	s.record(Call{Op: "click", Sel: sel, Nth: nth})
	if err := s.fail("click"); err != nil {
		return err
	}
	if err := s.present(sel, nth); err != nil {
		return err
	}
	if hook := s.OnClick[sel]; hook != nil {
		hook(s, nth)
	}
	return nil
}

func (s *Session) SetFiles(ctx context.Context, sel string, nth int, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "files", Sel: sel, Nth: nth, Value: strings.Join(paths, ",")})
	if err := s.fail("files"); err != nil {
		return err
	}
	return s.present(sel, nth)
}

func (s *Session) InsertText(ctx context.Context, sel string, nth int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("insert"); err != nil {
		return err
	}
	if err := s.present(sel, nth); err != nil {
		return err
	}
	s.record(Call{Op: "insert", Sel: sel, Nth: nth, Value: text})
	key := fmt.Sprintf("%s#%d", sel, nth)
	s.Inserted[key] = append(s.Inserted[key], text)
	return nil
}

func (s *Session) Text(ctx context.Context, sel string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("text"); err != nil {
		return "", err
	}
	seq, ok := s.Texts[sel]
	if !ok || len(seq) == 0 {
		return "", fmt.Errorf("%w: %s", browser.ErrNoSuchElement, sel)
	}
	s.record(Call{Op: "text", Sel: sel, Value: seq[0]})
	if len(seq) > 1 {
		s.Texts[sel] = seq[1:]
	}
	return seq[0], nil
}

func (s *Session) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.present(sel, 0); err != nil {
		return "", false, err
	}
	v, ok := s.Attrs[sel][name]
	return v, ok, nil
}

func (s *Session) Eval(ctx context.Context, script string, res interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "eval", Value: script})
	if err := s.fail("eval"); err != nil {
		return err
	}
	if s.EvalFunc != nil {
		return s.EvalFunc(script, res)
	}
	return nil
}

func (s *Session) Cookies(ctx context.Context) (cookies.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cookies"); err != nil {
		return nil, err
	}
	return append(cookies.Set(nil), s.Jar...), nil
}

func (s *Session) SetCookie(ctx context.Context, c cookies.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Call{Op: "setcookie", Value: c.Name})
	if err := s.fail("setcookie"); err != nil {
		return err
	}
	s.Injected = append(s.Injected, c)
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	s.CloseCount++
	return nil
}

// Ops returns the recorded calls with the given op, in order.
func (s *Session) Ops(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Clicked reports whether sel was clicked at least once.
func (s *Session) Clicked(sel string) bool {
	for _, c := range s.Ops("click") {
		if c.Sel == sel {
			return true
		}
	}
	return false
}

var _ browser.Session = (*Session)(nil)

// Launcher hands out scripted sessions.
type Launcher struct {
	mu sync.Mutex
	// Sessions are returned in order; once exhausted, New builds more.
	Sessions []*Session
	New      func() *Session
	OpenErr  error

	Opened  []*Session
	Options []browser.Options
}

func (l *Launcher) Open(ctx context.Context, opts browser.Options) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Options = append(l.Options, opts)
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	var s *Session
	switch {
	case len(l.Sessions) > 0:
		s = l.Sessions[0]
		l.Sessions = l.Sessions[1:]
	case l.New != nil:
		s = l.New()
	default:
		s = NewSession()
	}
	l.Opened = append(l.Opened, s)
	return s, nil
}

// OpenCount is the number of Open calls, successful or not.
func (l *Launcher) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Options)
}

var _ browser.Launcher = (*Launcher)(nil)

// Process is a fake unmanaged browser.
type Process struct {
	PID int
	// KillErr is returned by Kill. With KeepAlive set, Kill does not make
	// the process exit.
	KillErr   error
	KeepAlive bool

	mu     sync.Mutex
	killed bool
	done   chan struct{}
	once   sync.Once
}

func NewProcess(pid int) *Process {
	return &Process{PID: pid, done: make(chan struct{})}
}

func (p *Process) Pid() int { return p.PID }

func (p *Process) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	if p.KillErr != nil {
		return p.KillErr
	}
	if !p.KeepAlive {
		p.Exit()
	}
	return nil
}

// Exit simulates the process ending on its own.
func (p *Process) Exit() {
	p.once.Do(func() { close(p.done) })
}

func (p *Process) Exited() <-chan struct{} { return p.done }

func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

var _ browser.Process = (*Process)(nil)

// Spawner returns Proc for every Spawn call.
type Spawner struct {
	Proc     *Process
	SpawnErr error
	Spawned  []browser.SpawnOptions
}

func (s *Spawner) Spawn(ctx context.Context, opts browser.SpawnOptions) (browser.Process, error) {
	s.Spawned = append(s.Spawned, opts)
	if s.SpawnErr != nil {
		return nil, s.SpawnErr
	}
	if s.Proc == nil {
		s.Proc = NewProcess(4242)
	}
	return s.Proc, nil
}

var _ browser.Spawner = (*Spawner)(nil)
