package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

const removeAuthDialogScript = `(function(){
	var d = document.querySelector('` + selAuthDialog + `');
	if (d) { d.remove(); return true; }
	return false;
})()`

// run is the state of one upload. Session calls are strictly sequential:
// the auth dialog suppressor only fires while run is waiting in pause,
// waitFor or the progress loop.
type run struct {
	s        browser.Session
	t        Timing
	log      logger.Logger
	progress func(string)
	stage    Stage

	suppressor *time.Ticker
	suppress   <-chan time.Time
}

func (r *run) enter(st Stage, msg string) {
	r.stage = st
	r.log.Info("stage %s", st)
	r.progress(msg)
}

func (r *run) startSuppressor() {
	if r.suppressor != nil {
		return
	}
	r.suppressor = time.NewTicker(r.t.SuppressEvery)
	r.suppress = r.suppressor.C
}

func (r *run) stopSuppressor() {
	if r.suppressor == nil {
		return
	}
	r.suppressor.Stop()
	r.suppressor = nil
	r.suppress = nil
}

// dismissAuthDialog removes the "confirm it's you" overlay, which blocks
// clicks on the wizard underneath it.
func (r *run) dismissAuthDialog(ctx context.Context) {
	var removed bool
	if err := r.s.Eval(ctx, removeAuthDialogScript, &removed); err != nil {
		r.log.Info("auth dialog check: %v", err)
		return
	}
	if removed {
		r.log.Info("removed auth confirmation dialog")
	}
}

// pause waits d while servicing the suppressor.
func (r *run) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		case <-r.suppress:
			r.dismissAuthDialog(ctx)
		}
	}
}

// fail classifies a session error raised while working on sel.
func (r *run) fail(err error, intent, sel string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, browser.ErrNoSuchElement) {
		return common.WrapError(common.KindElementTimeout, r.stage.String(), intent+": element not found", err).WithTarget(sel)
	}
	return common.WrapError(common.KindEnvironment, r.stage.String(), intent+": browser call failed", err).WithTarget(sel)
}

// waitFor polls until sel has at least min matches or bound elapses.
func (r *run) waitFor(ctx context.Context, sel string, min int, bound time.Duration, intent string) (int, error) {
	deadline := time.Now().Add(bound)
	for {
		n, err := r.s.Count(ctx, sel)
		if err != nil {
			return 0, r.fail(err, intent, sel)
		}
		if n >= min {
			return n, nil
		}
		if time.Now().After(deadline) {
			return n, common.NewError(common.KindElementTimeout, r.stage.String(),
				fmt.Sprintf("%s: not found within %s", intent, bound)).WithTarget(sel)
		}
		if err := r.pause(ctx, r.t.WaitPoll); err != nil {
			return 0, err
		}
	}
}

// present reports whether sel currently matches anything, without waiting.
func (r *run) present(ctx context.Context, sel, intent string) (bool, error) {
	n, err := r.s.Count(ctx, sel)
	if err != nil {
		return false, r.fail(err, intent, sel)
	}
	return n > 0, nil
}

func (r *run) click(ctx context.Context, sel string, nth int, intent string) error {
	if _, err := r.waitFor(ctx, sel, nth+1, r.t.ElementWait, intent); err != nil {
		return err
	}
	if err := r.s.Click(ctx, sel, nth); err != nil {
		return r.fail(err, intent, sel)
	}
	return nil
}

func (r *run) setFiles(ctx context.Context, sel, path, intent string) error {
	if _, err := r.waitFor(ctx, sel, 1, r.t.ElementWait, intent); err != nil {
		return err
	}
	if err := r.s.SetFiles(ctx, sel, 0, path); err != nil {
		return r.fail(err, intent, sel)
	}
	return nil
}

// field is one of the wizard's text inputs. The editor renders title
// and description as identical contenteditable boxes, told apart only by
// their order.
type field struct {
	name string
	sel  string
	nth  int
}

var (
	titleField       = field{name: "title", sel: selTextbox, nth: 0}
	descriptionField = field{name: "description", sel: selTextbox, nth: 1}
)

func (r *run) write(ctx context.Context, f field, text string) error {
	intent := "write " + f.name
	if _, err := r.waitFor(ctx, f.sel, f.nth+1, r.t.ElementWait, intent); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.TypeDelay); err != nil {
		return err
	}
	if err := r.s.InsertText(ctx, f.sel, f.nth, text); err != nil {
		return r.fail(err, intent, f.sel)
	}
	return nil
}

func (r *run) close() {
	r.stopSuppressor()
	if err := r.s.Close(); err != nil {
		r.log.Warning("close session: %v", err)
	}
}
