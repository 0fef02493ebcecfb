package procwin

import (
	"context"
	"os"
)

func windowTitle(ctx context.Context, run runFunc, pid int) (string, error) {
	// Wayland-only sessions have no X server to ask.
	if os.Getenv("DISPLAY") == "" {
		return "", ErrUnsupported
	}
	return xpropTitle(ctx, run, pid)
}
