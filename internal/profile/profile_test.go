package profile

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

const prefix = "ytupload-profile-"

func newTestManager(fs afero.Fs, l logger.Logger) *Manager {
	m := NewManager(fs, "/tmp", l)
	m.sleep = func(time.Duration) {}
	return m
}

func TestAcquire_CreatesUniqueDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestManager(fs, nil)

	a, err := m.Acquire(prefix)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasPrefix(a.Dir(), "/tmp/"+prefix) {
		t.Errorf("unexpected dir %s", a.Dir())
	}
	if ok, _ := afero.DirExists(fs, a.Dir()); !ok {
		t.Fatal("profile dir was not created")
	}
	b, err := m.Acquire(prefix)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if a.Dir() == b.Dir() {
		t.Fatal("profiles must be unique")
	}
	// a is a stale sibling of b now
	if ok, _ := afero.DirExists(fs, a.Dir()); ok {
		t.Error("older profile should have been swept")
	}
}

func TestAcquire_SweepsOnlyMatchingPrefix(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/tmp/"+prefix+"old1/Default", 0700)
	_ = afero.WriteFile(fs, "/tmp/"+prefix+"old1/Default/Preferences", []byte("{}"), 0600)
	_ = fs.MkdirAll("/tmp/"+prefix+"old2", 0700)
	_ = fs.MkdirAll("/tmp/unrelated", 0700)
	_ = afero.WriteFile(fs, "/tmp/notes.txt", []byte("keep"), 0600)

	mock := logger.NewMockLogger()
	p, err := newTestManager(fs, mock).Acquire(prefix)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	for _, gone := range []string{"/tmp/" + prefix + "old1", "/tmp/" + prefix + "old2"} {
		if ok, _ := afero.Exists(fs, gone); ok {
			t.Errorf("%s should be swept", gone)
		}
	}
	for _, kept := range []string{"/tmp/unrelated", "/tmp/notes.txt", p.Dir()} {
		if ok, _ := afero.Exists(fs, kept); !ok {
			t.Errorf("%s should be kept", kept)
		}
	}
}

// flakyFs fails RemoveAll for paths containing match, failures times.
type flakyFs struct {
	afero.Fs
	match    string
	failures int
	calls    int
}

func (f *flakyFs) RemoveAll(path string) error {
	if strings.Contains(path, f.match) {
		f.calls++
		if f.calls <= f.failures {
			return errors.New("device or resource busy")
		}
	}
	return f.Fs.RemoveAll(path)
}

func TestAcquire_SweepFailureIsWarning(t *testing.T) {
	base := afero.NewMemMapFs()
	_ = base.MkdirAll("/tmp/"+prefix+"locked", 0700)
	fs := &flakyFs{Fs: base, match: "locked", failures: 100}
	mock := logger.NewMockLogger()

	if _, err := newTestManager(fs, mock).Acquire(prefix); err != nil {
		t.Fatalf("sweep failure must not fail Acquire: %v", err)
	}
	warnings := mock.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], prefix+"locked") {
		t.Errorf("expected one warning naming the stale profile, got %v", warnings)
	}
}

func TestRelease_RemovesAndIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestManager(fs, nil)
	p, err := m.Acquire(prefix)
	if err != nil {
		t.Fatal(err)
	}
	_ = afero.WriteFile(fs, p.Dir()+"/Default/Cookies", []byte("x"), 0600)

	if err := p.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ok, _ := afero.Exists(fs, p.Dir()); ok {
		t.Error("profile dir should be gone")
	}
	if err := p.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

func TestRelease_RetriesThenSucceeds(t *testing.T) {
	base := afero.NewMemMapFs()
	fs := &flakyFs{Fs: base, match: prefix, failures: 2}
	m := newTestManager(fs, nil)
	p, err := m.Acquire(prefix)
	if err != nil {
		t.Fatal(err)
	}
	fs.calls = 0

	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }

	if err := p.Release(); err != nil {
		t.Fatalf("Release should succeed on the third attempt: %v", err)
	}
	if fs.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", fs.calls)
	}
	if len(slept) != 2 || slept[0] != defaultRetryDelay {
		t.Errorf("unexpected sleeps %v", slept)
	}
}

func TestRelease_GivesUp(t *testing.T) {
	base := afero.NewMemMapFs()
	fs := &flakyFs{Fs: base, match: prefix, failures: 1000}
	m := newTestManager(fs, nil)

	// Acquire would also try to sweep; create the profile directly.
	_ = base.MkdirAll("/tmp/"+prefix+"x", 0700)
	p := &Profile{m: m, dir: "/tmp/" + prefix + "x"}

	err := p.Release()
	if !errors.Is(err, common.ErrEnvironment) {
		t.Fatalf("expected environment error, got %v", err)
	}
	if fs.calls != defaultRetries {
		t.Errorf("expected %d attempts, got %d", defaultRetries, fs.calls)
	}
	if again := p.Release(); again != err {
		t.Error("Release should return the memoized error")
	}
	if fs.calls != defaultRetries {
		t.Error("memoized Release must not retry")
	}
}

func TestAcquire_ReadOnlyRoot(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := newTestManager(fs, nil).Acquire(prefix)
	if !errors.Is(err, common.ErrEnvironment) {
		t.Fatalf("expected environment error, got %v", err)
	}
}
