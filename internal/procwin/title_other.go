//go:build !linux && !windows

package procwin

import "context"

func windowTitle(ctx context.Context, run runFunc, pid int) (string, error) {
	return "", ErrUnsupported
}
