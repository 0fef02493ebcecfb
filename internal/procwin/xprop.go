package procwin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var (
	windowIDRe = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	wmPIDRe    = regexp.MustCompile(`_NET_WM_PID\(CARDINAL\) = (\d+)`)
	wmNameRe   = regexp.MustCompile(`_NET_WM_NAME\(UTF8_STRING\) = "((?:[^"\\]|\\.)*)"`)
)

// parseClientList extracts window ids from
// `xprop -root _NET_CLIENT_LIST` output.
func parseClientList(out string) []string {
	i := strings.Index(out, "#")
	if i < 0 {
		return nil
	}
	return windowIDRe.FindAllString(out[i:], -1)
}

// parseWindowProps reads the pid and title from
// `xprop -id <wid> _NET_WM_PID _NET_WM_NAME` output.
func parseWindowProps(out string) (pid int, name string, ok bool) {
	m := wmPIDRe.FindStringSubmatch(out)
	if m == nil {
		return 0, "", false
	}
	pid, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	if n := wmNameRe.FindStringSubmatch(out); n != nil {
		name = unescapeXprop(n[1])
	}
	return pid, name, true
}

func unescapeXprop(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// xpropTitle walks the EWMH client list and collects the titles of windows
// owned by pid.
func xpropTitle(ctx context.Context, run runFunc, pid int) (string, error) {
	out, err := run(ctx, "xprop", "-root", "_NET_CLIENT_LIST")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrUnsupported
		}
		return "", fmt.Errorf("list windows: %w", err)
	}
	if strings.Contains(string(out), "not found") {
		// No EWMH window manager.
		return "", ErrUnsupported
	}
	ids := parseClientList(string(out))
	var titles []string
	for _, id := range ids {
		props, err := run(ctx, "xprop", "-id", id, "_NET_WM_PID", "_NET_WM_NAME")
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// Windows close between the two calls.
			continue
		}
		if p, name, ok := parseWindowProps(string(props)); ok && p == pid {
			titles = append(titles, name)
		}
	}
	return joinTitles(titles), nil
}
