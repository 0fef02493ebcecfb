package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/zalando/go-keyring"

	appcommon "github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/cmd/common"
	"github.com/evilive3000/apiless-upload/internal/browser"
	"github.com/evilive3000/apiless-upload/internal/browser/browsertest"
	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/internal/login"
	"github.com/evilive3000/apiless-upload/internal/procwin"
	"github.com/evilive3000/apiless-upload/internal/studio"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

const cookiePath = "/cfg/cookies.json"

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type titleInspector struct{ title string }

func (i titleInspector) Alive(int) bool { return true }

func (i titleInspector) WindowTitle(context.Context, int) (string, error) {
	return i.title, nil
}

type harness struct {
	out      *syncBuffer
	launcher *browsertest.Launcher
	spawner  *browsertest.Spawner
}

// setup points every swappable dependency at a fake and restores them
// when the test ends.
func setup(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		out:      &syncBuffer{},
		launcher: &browsertest.Launcher{},
		spawner:  &browsertest.Spawner{},
	}

	oldFs, oldIn, oldOut, oldErr := appFs, stdin, stdout, stderr
	oldFind, oldLauncher, oldSpawner, oldInspector := findChrome, newLauncher, newSpawner, newInspector
	oldLogin, oldTiming, oldSettle := loginConfig, uploadTiming, validatorSettle
	t.Cleanup(func() {
		appFs, stdin, stdout, stderr = oldFs, oldIn, oldOut, oldErr
		findChrome, newLauncher, newSpawner, newInspector = oldFind, oldLauncher, oldSpawner, oldInspector
		loginConfig, uploadTiming, validatorSettle = oldLogin, oldTiming, oldSettle
	})

	appFs = afero.NewMemMapFs()
	stdin = strings.NewReader("")
	stdout = h.out
	stderr = io.Discard
	findChrome = func() (string, error) { return "", errors.New("no chrome here") }
	newLauncher = func(logger.Logger, bool) browser.Launcher { return h.launcher }
	newSpawner = func() browser.Spawner { return h.spawner }
	newInspector = func() procwin.Inspector { return titleInspector{title: "Channel content - YouTube Studio"} }
	loginConfig = func() login.Config {
		return login.Config{
			PollInterval:      time.Millisecond,
			ExitWait:          time.Second,
			AccountSelectPoll: time.Millisecond,
		}
	}
	uploadTiming = func() studio.Timing {
		return studio.Timing{WaitPoll: time.Millisecond, ProgressPoll: time.Millisecond}
	}
	validatorSettle = 0

	t.Setenv(appcommon.ConfigDirEnv, "/cfg")
	t.Setenv(appcommon.ChromePathEnv, "")
	t.Setenv(appcommon.CookiesEnv, "")
	t.Setenv(appcommon.HeadlessEnv, "")
	t.Setenv(appcommon.LogFileEnv, "")
	t.Setenv(appcommon.DebugEnv, "")
	return h
}

func (h *harness) run(args ...string) error {
	app := newApp(context.Background(), BuildArgs{Version: "1.0.0", BuildType: "test"})
	return app.Run(append([]string{"ytupload"}, args...))
}

func sampleSet() cookies.Set {
	return cookies.Set{
		{Name: "SID", Value: "sid-secret", Domain: ".youtube.com", Path: "/", Expiry: 1900000000, Secure: true, HTTPOnly: true},
		{Name: "HSID", Value: "hsid-secret", Domain: ".google.com", Path: "/", Expiry: 1900000000},
	}
}

func seed(t *testing.T) {
	t.Helper()
	if err := cookies.Save(appFs, cookiePath, sampleSet()); err != nil {
		t.Fatalf("seed cookies: %v", err)
	}
}

func wantCode(t *testing.T, err error, code int) {
	t.Helper()
	if got := ExitCode(err); got != code {
		t.Fatalf("exit code = %d, want %d (err: %v)", got, code, err)
	}
}

func TestLogin_SavesCookies(t *testing.T) {
	h := setup(t)
	s := browsertest.NewSession()
	s.Redirects[studio.AccountSelectURL] = studio.HomeURL
	s.Jar = sampleSet()
	h.launcher.Sessions = []*browsertest.Session{s}

	err := h.run("login", "--chrome", "/opt/chrome", "--temp-root", "/tmp")
	wantCode(t, err, common.ExitOK)

	if len(h.spawner.Spawned) != 1 {
		t.Fatalf("spawned %d browsers, want 1", len(h.spawner.Spawned))
	}
	if got := h.spawner.Spawned[0].ExecPath; got != "/opt/chrome" {
		t.Errorf("spawned %q, want /opt/chrome", got)
	}
	set, err := cookies.Load(appFs, cookiePath)
	if err != nil {
		t.Fatalf("load saved cookies: %v", err)
	}
	if len(set) != 2 {
		t.Errorf("saved %d cookies, want 2", len(set))
	}
	if !strings.Contains(h.out.String(), "Saved 2 cookies") {
		t.Errorf("output = %q", h.out.String())
	}
	if entries, _ := afero.ReadDir(appFs, "/tmp"); len(entries) != 0 {
		t.Errorf("profile left behind: %d entries", len(entries))
	}
}

func TestLogin_NeedsChrome(t *testing.T) {
	h := setup(t)
	err := h.run("login")
	wantCode(t, err, common.ExitEnvironment)
	if len(h.spawner.Spawned) != 0 {
		t.Error("browser spawned without an executable")
	}
}

func TestCheck_Valid(t *testing.T) {
	h := setup(t)
	seed(t)
	err := h.run("check")
	wantCode(t, err, common.ExitOK)
	if !strings.Contains(h.out.String(), "are valid") {
		t.Errorf("output = %q", h.out.String())
	}
	if !h.launcher.Options[0].Headless {
		t.Error("check should run headless")
	}
}

func TestCheck_Expired(t *testing.T) {
	h := setup(t)
	seed(t)
	h.launcher.New = func() *browsertest.Session {
		s := browsertest.NewSession()
		s.Redirects[studio.StudioURL] = "https://accounts.google.com/ServiceLogin"
		return s
	}
	err := h.run("check")
	wantCode(t, err, common.ExitInvalidSession)
}

func TestCheck_NoSession(t *testing.T) {
	h := setup(t)
	err := h.run("check")
	wantCode(t, err, common.ExitValidation)
	if h.launcher.OpenCount() != 0 {
		t.Error("browser opened without cookies")
	}
}

func TestUpload_InvalidInputNeverLaunches(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"no file", []string{"upload", "--title", "x"}},
		{"no title", []string{"upload", "/v.mp4"}},
		{"missing file", []string{"upload", "--title", "x", "/missing.mp4"}},
		{"bad visibility", []string{"upload", "--title", "x", "--visibility", "friends", "/v.mp4"}},
		{"two files", []string{"upload", "--title", "x", "/v.mp4", "/w.mp4"}},
		{"long title", []string{"upload", "--title", strings.Repeat("a", 101), "/v.mp4"}},
		{"both descriptions", []string{"upload", "--title", "x", "-d", "a", "--description-file", "/d.txt", "/v.mp4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := setup(t)
			seed(t)
			_ = afero.WriteFile(appFs, "/v.mp4", []byte("video"), 0644)
			_ = afero.WriteFile(appFs, "/d.txt", []byte("desc"), 0644)

			err := h.run(tc.args...)
			wantCode(t, err, common.ExitValidation)
			if h.launcher.OpenCount() != 0 {
				t.Error("browser opened for invalid input")
			}
		})
	}
}

func TestUpload_ExpiredCookies(t *testing.T) {
	h := setup(t)
	seed(t)
	_ = afero.WriteFile(appFs, "/v.mp4", []byte("video"), 0644)
	s := browsertest.NewSession()
	s.Redirects[studio.StudioURL] = "https://accounts.google.com/ServiceLogin"
	h.launcher.Sessions = []*browsertest.Session{s}

	err := h.run("upload", "--title", "My video", "/v.mp4")
	wantCode(t, err, common.ExitInvalidSession)
	if len(s.Injected) != 2 {
		t.Errorf("injected %d cookies, want 2", len(s.Injected))
	}
	if !s.Closed {
		t.Error("session not closed")
	}
	if !h.launcher.Options[0].Headless {
		t.Error("upload should default to headless")
	}
}

func TestUpload_HeadlessOff(t *testing.T) {
	h := setup(t)
	seed(t)
	_ = afero.WriteFile(appFs, "/v.mp4", []byte("video"), 0644)
	h.launcher.New = func() *browsertest.Session {
		s := browsertest.NewSession()
		s.Redirects[studio.StudioURL] = "https://accounts.google.com/ServiceLogin"
		return s
	}

	_ = h.run("upload", "--headless=false", "--title", "x", "/v.mp4")
	if h.launcher.OpenCount() != 1 {
		t.Fatalf("opened %d sessions, want 1", h.launcher.OpenCount())
	}
	if h.launcher.Options[0].Headless {
		t.Error("--headless=false ignored")
	}
}

func TestCookiesShow_HidesValues(t *testing.T) {
	h := setup(t)
	seed(t)
	err := h.run("cookies", "show")
	wantCode(t, err, common.ExitOK)

	out := h.out.String()
	for _, want := range []string{"SID", "HSID", ".youtube.com", "2 cookies"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") {
		t.Errorf("cookie value printed:\n%s", out)
	}
}

func TestCookiesExport_Stdout(t *testing.T) {
	h := setup(t)
	seed(t)
	err := h.run("cookies", "export")
	wantCode(t, err, common.ExitOK)

	set, skipped, err := cookies.ReadNetscape(strings.NewReader(h.out.String()), nil)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if skipped != 0 || len(set) != 2 {
		t.Errorf("exported %d cookies (%d skipped), want 2", len(set), skipped)
	}
}

func TestCookiesExport_File(t *testing.T) {
	h := setup(t)
	seed(t)
	_ = appFs.MkdirAll("/out", 0755)
	err := h.run("cookies", "export", "-o", "/out/cookies.txt")
	wantCode(t, err, common.ExitOK)
	fi, err := appFs.Stat("/out/cookies.txt")
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("export mode = %v, want 0600", fi.Mode().Perm())
	}
}

func writeNetscapeFile(t *testing.T, path string, set cookies.Set) {
	t.Helper()
	f, err := appFs.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cookies.WriteNetscape(f, set); err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestCookiesImport_Netscape(t *testing.T) {
	h := setup(t)
	set := append(sampleSet(), cookies.Cookie{Name: "other", Value: "v", Domain: ".example.com", Path: "/"})
	writeNetscapeFile(t, "/home/u/cookies.txt", set)

	err := h.run("cookies", "import", "/home/u/cookies.txt")
	wantCode(t, err, common.ExitOK)

	got, err := cookies.Load(appFs, cookiePath)
	if err != nil {
		t.Fatalf("load imported cookies: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("imported %d cookies, want the 2 studio ones", len(got))
	}
	if !strings.Contains(h.out.String(), "Netscape") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestCookiesImport_FromBrowser(t *testing.T) {
	h := setup(t)
	var gotDomains []string
	importFromBrowser = func(fs afero.Fs, domains ...string) (*cookies.ImportResult, error) {
		gotDomains = domains
		return &cookies.ImportResult{
			Source: cookies.Source{Path: "/home/u/.mozilla/firefox/p/cookies.sqlite", Format: cookies.FormatFirefox, Browser: "Firefox"},
			Set:    sampleSet(),
		}, nil
	}
	t.Cleanup(func() { importFromBrowser = cookies.ImportFromBrowser })

	err := h.run("cookies", "import", "--domain", "youtube.com")
	wantCode(t, err, common.ExitOK)
	if len(gotDomains) != 1 || gotDomains[0] != "youtube.com" {
		t.Errorf("domains = %v", gotDomains)
	}
	if !strings.Contains(h.out.String(), "Firefox (/home/u/.mozilla/firefox/p/cookies.sqlite)") {
		t.Errorf("output = %q", h.out.String())
	}
	if got, _ := cookies.Load(appFs, cookiePath); len(got) != 2 {
		t.Errorf("saved %d cookies, want 2", len(got))
	}
}

func TestCookiesImport_NoBrowserStore(t *testing.T) {
	h := setup(t)
	importFromBrowser = func(afero.Fs, ...string) (*cookies.ImportResult, error) {
		return nil, errors.New("no browser cookie store found")
	}
	t.Cleanup(func() { importFromBrowser = cookies.ImportFromBrowser })

	err := h.run("cookies", "import")
	wantCode(t, err, common.ExitValidation)
	if ok, _ := afero.Exists(appFs, cookiePath); ok {
		t.Error("cookie file written without an import")
	}
}

func TestCookiesClear(t *testing.T) {
	h := setup(t)
	seed(t)
	err := h.run("cookies", "clear")
	wantCode(t, err, common.ExitOK)
	if ok, _ := afero.Exists(appFs, cookiePath); ok {
		t.Error("cookie file still present")
	}
	// Clearing twice is fine.
	wantCode(t, h.run("cookies", "clear"), common.ExitOK)
}

func TestCookiesFlag_OverridesPath(t *testing.T) {
	h := setup(t)
	if err := cookies.Save(appFs, "/elsewhere.json", sampleSet()); err != nil {
		t.Fatal(err)
	}
	err := h.run("cookies", "show", "--cookies", "/elsewhere.json")
	wantCode(t, err, common.ExitOK)
	if !strings.Contains(h.out.String(), "/elsewhere.json") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestVault_RoundTrip(t *testing.T) {
	keyring.MockInit()
	h := setup(t)
	writeNetscapeFile(t, "/home/u/cookies.txt", sampleSet())

	wantCode(t, h.run("cookies", "import", "--vault", "/home/u/cookies.txt"), common.ExitOK)
	if ok, _ := afero.Exists(appFs, cookiePath); ok {
		t.Error("plain cookie file written in vault mode")
	}
	wantCode(t, h.run("cookies", "show", "--vault"), common.ExitOK)
	if !strings.Contains(h.out.String(), "(encrypted)") {
		t.Errorf("output = %q", h.out.String())
	}
	wantCode(t, h.run("check", "--vault"), common.ExitOK)

	wantCode(t, h.run("cookies", "clear", "--vault"), common.ExitOK)
	wantCode(t, h.run("cookies", "show", "--vault"), common.ExitValidation)
}

func TestVersionString(t *testing.T) {
	newApp(context.Background(), BuildArgs{Version: "1.2.3", BuildType: "release", Commit: "abc", Date: "2026-01-01"})
	for _, want := range []string{"ytupload 1.2.3-release", "2026-01-01=abc"} {
		if !strings.Contains(common.VersionCmdStr, want) {
			t.Errorf("version %q lacks %q", common.VersionCmdStr, want)
		}
	}
}
