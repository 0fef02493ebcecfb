package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

// ChromeLauncher opens sessions through chromedp.
type ChromeLauncher struct {
	log logger.Logger
	// Debug logs every DevTools protocol message at info level.
	Debug bool
}

// NewChromeLauncher returns a launcher logging to l.
func NewChromeLauncher(l logger.Logger) *ChromeLauncher {
	return &ChromeLauncher{log: logger.OrNop(l)}
}

// allocatorOptions leaves out password-store=basic and use-mock-keychain
// from chromedp's default list. With either switch the session cannot
// decrypt cookies that a normally started browser wrote into the profile.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	w, h := opts.windowSize()
	out := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("hide-scrollbars", opts.Headless),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("enable-automation", opts.Automation),
		chromedp.WindowSize(w, h),
	}
	if opts.UserDataDir != "" {
		out = append(out, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	return out
}

// Open starts a browser for opts and returns a session on its first tab.
func (l *ChromeLauncher) Open(ctx context.Context, opts Options) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	ctxOpts := []chromedp.ContextOption{
		chromedp.WithErrorf(func(format string, args ...interface{}) { l.log.Warning("cdp: "+format, args...) }),
	}
	if l.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(func(format string, args ...interface{}) { l.log.Info("cdp: "+format, args...) }))
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)
	s := &chromeSession{ctx: tabCtx, cancel: func() { tabCancel(); allocCancel() }, log: l.log}

	// The first Run starts the browser and ties it to the context it is
	// given, so it gets the tab context itself rather than a bounded child.
	if err := chromedp.Run(tabCtx); err != nil {
		s.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return s, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger
	closed bool
}

// run executes actions on the tab, bounded by opCtx's deadline and
// cancellation as well as by the session's own lifetime.
func (s *chromeSession) run(opCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if dl, ok := opCtx.Deadline(); ok {
		var dlCancel context.CancelFunc
		runCtx, dlCancel = context.WithDeadline(runCtx, dl)
		defer dlCancel()
	}
	stop := context.AfterFunc(opCtx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && opCtx.Err() != nil {
		return opCtx.Err()
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (s *chromeSession) Count(ctx context.Context, sel string) (int, error) {
	var n int
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(sel)), &n))
	return n, err
}

// node resolves the nth match of sel without waiting for it to appear.
func (s *chromeSession) node(ctx context.Context, sel string, nth int) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	if nth < 0 || nth >= len(nodes) {
		return nil, fmt.Errorf("%w: %s[%d] (%d matches)", ErrNoSuchElement, sel, nth, len(nodes))
	}
	return nodes[nth], nil
}

func (s *chromeSession) Click(ctx context.Context, sel string, nth int) error {
	n, err := s.node(ctx, sel, nth)
	if err != nil {
		return err
	}
	return s.run(ctx,
		dom.ScrollIntoViewIfNeeded().WithNodeID(n.NodeID),
		chromedp.MouseClickNode(n),
	)
}

func (s *chromeSession) SetFiles(ctx context.Context, sel string, nth int, paths ...string) error {
	n, err := s.node(ctx, sel, nth)
	if err != nil {
		return err
	}
	return s.run(ctx, dom.SetFileInputFiles(paths).WithNodeID(n.NodeID))
}

const insertTextScript = `(function(sel, nth, text) {
	var el = document.querySelectorAll(sel)[nth];
	if (!el) { return false; }
	el.focus();
	document.execCommand('selectAll', false, null);
	document.execCommand('delete', false, null);
	document.execCommand('insertText', false, text);
	return true;
})(%s, %d, %s)`

func (s *chromeSession) InsertText(ctx context.Context, sel string, nth int, text string) error {
	if err := s.Click(ctx, sel, nth); err != nil {
		return err
	}
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(insertTextScript, jsString(sel), nth, jsString(text)), &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s[%d]", ErrNoSuchElement, sel, nth)
	}
	return nil
}

func (s *chromeSession) Text(ctx context.Context, sel string) (string, error) {
	var text *string
	script := fmt.Sprintf(`(function(el){ return el ? el.innerText : null; })(document.querySelector(%s))`, jsString(sel))
	if err := s.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", err
	}
	if text == nil {
		return "", fmt.Errorf("%w: %s", ErrNoSuchElement, sel)
	}
	return *text, nil
}

func (s *chromeSession) Attribute(ctx context.Context, sel, name string) (string, bool, error) {
	var res struct {
		Found bool    `json:"found"`
		Value *string `json:"value"`
	}
	script := fmt.Sprintf(`(function(el){
		if (!el) { return {found: false, value: null}; }
		return {found: true, value: el.getAttribute(%s)};
	})(document.querySelector(%s))`, jsString(name), jsString(sel))
	if err := s.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, err
	}
	if !res.Found {
		return "", false, fmt.Errorf("%w: %s", ErrNoSuchElement, sel)
	}
	if res.Value == nil {
		return "", false, nil
	}
	return *res.Value, true, nil
}

func (s *chromeSession) Eval(ctx context.Context, script string, res interface{}) error {
	return s.run(ctx, chromedp.Evaluate(script, res))
}

func (s *chromeSession) Cookies(ctx context.Context) (cookies.Set, error) {
	var raw []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		raw, err = storage.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	set := make(cookies.Set, 0, len(raw))
	for _, c := range raw {
		set = append(set, fromNetworkCookie(c))
	}
	return set, nil
}

func (s *chromeSession) SetCookie(ctx context.Context, c cookies.Cookie) error {
	p := toCookieParam(c)
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies([]*network.CookieParam{p}).Do(ctx)
	}))
	if err != nil {
		// Only the name: the value is a credential.
		return fmt.Errorf("set cookie %s: %w", c.Name, err)
	}
	return nil
}

func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	closeCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	err := chromedp.Cancel(closeCtx)
	s.cancel()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func fromNetworkCookie(c *network.Cookie) cookies.Cookie {
	out := cookies.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: string(c.SameSite),
	}
	if !c.Session && c.Expires > 0 {
		out.Expiry = int64(c.Expires)
	}
	return out
}

func toCookieParam(c cookies.Cookie) *network.CookieParam {
	p := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if p.Path == "" {
		p.Path = "/"
	}
	if c.Domain == "" {
		p.URL = "https://www.youtube.com/"
	}
	switch strings.ToLower(c.SameSite) {
	case "strict":
		p.SameSite = network.CookieSameSiteStrict
	case "lax":
		p.SameSite = network.CookieSameSiteLax
	case "none", "no_restriction":
		p.SameSite = network.CookieSameSiteNone
	}
	if c.Expiry > 0 {
		t := cdp.TimeSinceEpoch(time.Unix(c.Expiry, 0))
		p.Expires = &t
	}
	return p
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

var _ Launcher = (*ChromeLauncher)(nil)
