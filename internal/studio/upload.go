package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

// DoneMessage is the last progress line of a successful upload.
const DoneMessage = "Done! (video may still be processing, but it is uploaded)"

const defaultMaxWait = 2 * time.Hour

// UploadOptions tune a single Upload call.
type UploadOptions struct {
	Headless bool
	// OnProgress receives human readable progress lines. Defaults to
	// printing on stdout.
	OnProgress func(string)
	// MaxWait bounds the wait for the file transfer to finish.
	MaxWait time.Duration
}

// Uploader drives the studio upload wizard.
type Uploader struct {
	Launcher browser.Launcher
	FS       afero.Fs
	Log      logger.Logger
	Timing   Timing
	ExecPath string
}

// NewUploader returns an Uploader on the real filesystem with DefaultTiming.
func NewUploader(l browser.Launcher, log logger.Logger) *Uploader {
	return &Uploader{
		Launcher: l,
		FS:       afero.NewOsFs(),
		Log:      log,
		Timing:   DefaultTiming(),
	}
}

func (u *Uploader) fs() afero.Fs {
	if u.FS == nil {
		return afero.NewOsFs()
	}
	return u.FS
}

// Upload publishes v on the channel set belongs to. Input is validated
// before a browser is started.
func (u *Uploader) Upload(ctx context.Context, v Video, set cookies.Set, opts UploadOptions) error {
	if len(set) == 0 {
		return common.NewError(common.KindValidation, "upload", "no cookies, sign in first")
	}
	if err := v.Validate(u.fs()); err != nil {
		return err
	}
	v, err := v.withDefaults()
	if err != nil {
		return err
	}
	if opts.OnProgress == nil {
		opts.OnProgress = func(s string) { fmt.Println(s) }
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = defaultMaxWait
	}

	log := logger.WithComponent(u.Log, "upload")
	s, err := u.Launcher.Open(ctx, browser.Options{Headless: opts.Headless, ExecPath: u.ExecPath})
	if err != nil {
		return common.WrapError(common.KindEnvironment, "upload", "could not start browser", err)
	}
	r := &run{
		s:        s,
		t:        u.Timing.withDefaults(),
		log:      log,
		progress: opts.OnProgress,
	}
	defer r.close()

	steps := []func(context.Context) error{
		func(ctx context.Context) error { return r.injectCookies(ctx, set) },
		r.enterStudio,
		func(ctx context.Context) error { return r.selectFile(ctx, v.Path) },
		func(ctx context.Context) error { return r.fillMetadata(ctx, v.Title, v.Description) },
		func(ctx context.Context) error { return r.setThumbnail(ctx, v.ThumbnailPath) },
		r.setAudience,
		func(ctx context.Context) error { return r.setMonetization(ctx, v.Monetization) },
		func(ctx context.Context) error { return r.setVisibility(ctx, v.Visibility) },
		func(ctx context.Context) error { return r.awaitTransfer(ctx, opts.MaxWait) },
		r.confirm,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			log.Error("%s: %v", r.stage, err)
			return err
		}
	}
	return nil
}

func (r *run) injectCookies(ctx context.Context, set cookies.Set) error {
	r.enter(StageCookies, "Setting cookies..")
	if err := r.s.Navigate(ctx, GoogleURL); err != nil {
		return r.fail(err, "open "+GoogleURL, "")
	}
	for _, c := range set {
		if err := r.s.SetCookie(ctx, c); err != nil {
			return r.fail(err, fmt.Sprintf("set cookie %s for %s", c.Name, c.Domain), "")
		}
	}
	r.log.Info("injected %d cookies", len(set))
	return nil
}

func (r *run) enterStudio(ctx context.Context) error {
	r.enter(StageStudio, "Opening YouTube Studio..")
	if err := r.s.Navigate(ctx, StudioURL); err != nil {
		return r.fail(err, "open "+StudioURL, "")
	}
	if err := r.pause(ctx, r.t.StudioSettle); err != nil {
		return err
	}
	r.startSuppressor()

	loc, err := r.s.Location(ctx)
	if err != nil {
		return r.fail(err, "read location", "")
	}
	if !InStudio(loc) {
		return common.NewError(common.KindInvalidSession, r.stage.String(),
			"cookies are expired or not valid, redirected").WithTarget(loc)
	}
	return nil
}

func (r *run) selectFile(ctx context.Context, path string) error {
	r.enter(StageFile, "Initializing video..")
	if err := r.click(ctx, selUploadIcon, 0, "open upload dialog"); err != nil {
		return err
	}
	if _, err := r.waitFor(ctx, selFileInput, 1, r.t.FileInputWait, "file input"); err != nil {
		return err
	}
	if err := r.setFiles(ctx, selFileInput, path, "select video file"); err != nil {
		return err
	}
	if _, err := r.waitFor(ctx, selTextbox, 1, r.t.EditorWait, "details editor"); err != nil {
		return err
	}
	// The editor keeps loading drafts for a while after it appears.
	return r.pause(ctx, r.t.EditorSettle)
}

func (r *run) fillMetadata(ctx context.Context, title, description string) error {
	r.enter(StageMetadata, "Initializing title and description..")
	if err := r.writeMetadata(ctx, title, description); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.FieldSettle); err != nil {
		return err
	}
	// A draft can still overwrite the fields once they were edited.
	r.progress("Confirming title and description..")
	return r.writeMetadata(ctx, title, description)
}

func (r *run) writeMetadata(ctx context.Context, title, description string) error {
	if err := r.write(ctx, titleField, title); err != nil {
		return err
	}
	return r.write(ctx, descriptionField, description)
}

func (r *run) setThumbnail(ctx context.Context, path string) error {
	r.enter(StageThumbnail, "Entering custom thumbnail..")
	if path != "" {
		if err := r.setFiles(ctx, selThumbnail, path, "select thumbnail"); err != nil {
			return err
		}
	}
	return r.pause(ctx, r.t.ThumbnailSettle)
}

func (r *run) setAudience(ctx context.Context) error {
	r.enter(StageAudience, `Setting "not made for kids"..`)
	if err := r.click(ctx, selNotForKids, 0, "choose audience"); err != nil {
		return err
	}
	return r.pause(ctx, r.t.AudienceSettle)
}

// setMonetization is skipped on channels without the monetization tab.
func (r *run) setMonetization(ctx context.Context, want bool) error {
	r.stage = StageMonetization
	ok, err := r.present(ctx, selMonetizeTab, "monetization tab")
	if err != nil {
		return err
	}
	if !ok {
		r.enter(StageMonetization, "Monetization options are not available on this channel. Continuing..")
		return nil
	}
	r.enter(StageMonetization, "Applying monetization settings..")

	if err := r.click(ctx, selMonetizeTab, 0, "open monetization tab"); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.MonetizationStep); err != nil {
		return err
	}
	if err := r.click(ctx, selMonetizeOpen, 0, "open monetization editor"); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.MonetizationStep); err != nil {
		return err
	}
	if _, err := r.waitFor(ctx, selMonetizeOff, 1, r.t.ElementWait, "monetization off radio"); err != nil {
		return err
	}
	selected, _, err := r.s.Attribute(ctx, selMonetizeOff, "aria-selected")
	if err != nil {
		return r.fail(err, "read monetization state", selMonetizeOff)
	}
	isOff := selected == "true"

	var radio string
	switch {
	case isOff && want:
		r.progress("Setting monetization on..")
		radio = selMonetizeOn
	case !isOff && !want:
		r.progress("Setting monetization off..")
		radio = selMonetizeOff
	default:
		state := "on"
		if isOff {
			state = "off"
		}
		r.progress(fmt.Sprintf("Monetization is already the desired value (%s)..", state))
		if err := r.click(ctx, selBackdrop, 0, "close monetization editor"); err != nil {
			return err
		}
		return r.pause(ctx, r.t.MonetizationStep)
	}

	if err := r.click(ctx, radio, 0, "change monetization"); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.MonetizationStep); err != nil {
		return err
	}
	if err := r.click(ctx, selMonetizeSave, 0, "save monetization"); err != nil {
		return err
	}
	return r.pause(ctx, r.t.MonetizationStep)
}

func (r *run) setVisibility(ctx context.Context, v Visibility) error {
	r.enter(StageVisibility, fmt.Sprintf("Setting visibility option to %s..", v))
	idx, err := v.radioIndex()
	if err != nil {
		return err
	}
	if err := r.click(ctx, selReviewTab, 0, "open visibility tab"); err != nil {
		return err
	}
	if _, err := r.waitFor(ctx, selPrivacyGroup, 1, r.t.PrivacyWait, "visibility options"); err != nil {
		return err
	}
	return r.click(ctx, selPrivacyRadio, idx, "choose "+string(v))
}

// awaitTransfer forwards the progress label until the transfer is done.
func (r *run) awaitTransfer(ctx context.Context, maxWait time.Duration) error {
	r.enter(StagePublish, "Uploading..")
	ceiling := time.NewTimer(maxWait)
	defer ceiling.Stop()
	poll := time.NewTicker(r.t.ProgressPoll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ceiling.C:
			return common.NewError(common.KindElementTimeout, r.stage.String(),
				fmt.Sprintf("upload did not finish within %s", maxWait)).WithTarget(selProgressLabel)
		case <-r.suppress:
			r.dismissAuthDialog(ctx)
		case <-poll.C:
			text, err := r.s.Text(ctx, selProgressLabel)
			if errors.Is(err, browser.ErrNoSuchElement) {
				r.log.Info("progress label not rendered yet")
				continue
			}
			if err != nil {
				return r.fail(err, "read upload progress", selProgressLabel)
			}
			text = normalizeLabel(text)
			r.progress(text)
			if ClassifyProgress(text) == Complete {
				return nil
			}
		}
	}
}

func (r *run) confirm(ctx context.Context) error {
	r.enter(StageConfirm, "Publishing..")
	if err := r.click(ctx, selDone, 0, "publish"); err != nil {
		return err
	}
	if err := r.pause(ctx, r.t.DoneSettle); err != nil {
		return err
	}
	// Public monetized videos get an extra prechecks dialog.
	ok, err := r.present(ctx, selPrecheckPub, "prechecks dialog")
	if err != nil {
		return err
	}
	if ok {
		if err := r.s.Click(ctx, selPrecheckPub, 0); err != nil {
			return r.fail(err, "confirm prechecks", selPrecheckPub)
		}
	}
	if err := r.pause(ctx, r.t.PrecheckSettle); err != nil {
		return err
	}
	r.progress(DoneMessage)
	return nil
}
