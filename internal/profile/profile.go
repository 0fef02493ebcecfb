// Package profile manages throwaway browser profile directories. Each login
// gets a fresh directory; leftovers from earlier runs that share the prefix
// are swept when a new one is acquired.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/evilive3000/apiless-upload/common"
	"github.com/evilive3000/apiless-upload/pkg/logger"
)

const (
	defaultRetries    = 3
	defaultRetryDelay = 500 * time.Millisecond
)

// Manager creates profiles under Root.
type Manager struct {
	fs   afero.Fs
	root string
	log  logger.Logger

	// Retries and RetryDelay bound Release's removal attempts.
	Retries    int
	RetryDelay time.Duration

	sleep func(time.Duration)
}

// NewManager returns a Manager rooted at root (the system temp dir when
// empty).
func NewManager(fs afero.Fs, root string, l logger.Logger) *Manager {
	if root == "" {
		root = os.TempDir()
	}
	return &Manager{
		fs:         fs,
		root:       root,
		log:        logger.OrNop(l),
		Retries:    defaultRetries,
		RetryDelay: defaultRetryDelay,
		sleep:      time.Sleep,
	}
}

// Profile is one acquired directory.
type Profile struct {
	m    *Manager
	dir  string
	once sync.Once
	err  error
}

// Dir is the profile's user data directory.
func (p *Profile) Dir() string { return p.dir }

// Acquire creates a unique directory named prefix+random and then removes
// every other entry in the root that starts with prefix. Sweep failures
// are logged and do not fail the acquisition.
func (m *Manager) Acquire(prefix string) (*Profile, error) {
	if err := m.fs.MkdirAll(m.root, 0700); err != nil {
		return nil, common.WrapError(common.KindEnvironment, "profile.acquire", "create temp root", err)
	}
	dir, err := afero.TempDir(m.fs, m.root, prefix)
	if err != nil {
		return nil, common.WrapError(common.KindEnvironment, "profile.acquire", "create profile dir", err)
	}
	m.sweep(prefix, dir)
	m.log.Info("profile created at %s", dir)
	return &Profile{m: m, dir: dir}, nil
}

func (m *Manager) sweep(prefix, keep string) {
	entries, err := afero.ReadDir(m.fs, m.root)
	if err != nil {
		m.log.Warning("cannot list %s for stale profiles: %v", m.root, err)
		return
	}
	keepName := filepath.Base(keep)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || name == keepName {
			continue
		}
		if err := m.fs.RemoveAll(filepath.Join(m.root, name)); err != nil {
			m.log.Warning("cannot remove stale profile %s: %v", name, err)
			continue
		}
		m.log.Info("removed stale profile %s", name)
	}
}

// Release removes the directory tree. It retries a few times because a
// browser that just exited can still hold files open for a moment. The
// first call's result is returned by every later call.
func (p *Profile) Release() error {
	p.once.Do(func() {
		p.err = p.m.remove(p.dir)
	})
	return p.err
}

func (m *Manager) remove(dir string) error {
	attempts := m.Retries
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			m.sleep(m.RetryDelay)
		}
		if err = m.fs.RemoveAll(dir); err == nil {
			return nil
		}
	}
	return common.WrapError(common.KindEnvironment, "profile.release",
		fmt.Sprintf("remove %s after %d attempts", dir, attempts), err)
}
