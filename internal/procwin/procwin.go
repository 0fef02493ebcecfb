// Package procwin answers two questions about a running browser process:
// is it still alive, and what do its top-level windows say in their title
// bars. The login flow watches the title to notice a finished sign-in.
package procwin

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// ErrUnsupported is returned by WindowTitle on platforms, or desktops,
// where window titles cannot be read.
var ErrUnsupported = errors.New("window titles are not readable on this platform")

// Inspector looks at another process.
type Inspector interface {
	Alive(pid int) bool
	// WindowTitle returns the titles of the process's windows, one per
	// line. An empty string means the process has no titled window yet.
	WindowTitle(ctx context.Context, pid int) (string, error)
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// System inspects processes with platform tools: xprop on Linux,
// PowerShell on Windows.
type System struct {
	run runFunc
}

// New returns an Inspector backed by the platform tools.
func New() *System {
	return &System{run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	configureCmd(cmd)
	return cmd.Output()
}

// Alive reports whether pid is still running.
func (s *System) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return processAlive(pid)
}

// WindowTitle returns the titles of pid's top-level windows, one per line.
func (s *System) WindowTitle(ctx context.Context, pid int) (string, error) {
	return windowTitle(ctx, s.run, pid)
}

func joinTitles(titles []string) string {
	var kept []string
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n")
}

var _ Inspector = (*System)(nil)
