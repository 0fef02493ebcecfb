package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/evilive3000/apiless-upload/common"
)

// ErrChromeNotFound is returned by FindChrome when no executable is found.
var ErrChromeNotFound = errors.New("chrome executable not found, set " + common.ChromePathEnv)

// lookPath and stat are swapped in tests.
var (
	lookPath = exec.LookPath
	stat     = os.Stat
	getenv   = os.Getenv
)

// FindChrome resolves the Chrome executable: the YTUPLOAD_CHROME_PATH
// override, then the usual install locations for the platform, then PATH.
func FindChrome() (string, error) {
	if p := strings.TrimSpace(getenv(common.ChromePathEnv)); p != "" {
		if isExecutableFile(p) {
			return p, nil
		}
		return "", fmt.Errorf("%s points to %q which is not an executable file", common.ChromePathEnv, p)
	}
	for _, p := range installLocations(runtime.GOOS) {
		if isExecutableFile(p) {
			return p, nil
		}
	}
	for _, name := range pathNames(runtime.GOOS) {
		if p, err := lookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrChromeNotFound
}

func installLocations(goos string) []string {
	switch goos {
	case "windows":
		var out []string
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			if base := getenv(env); base != "" {
				out = append(out, filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"))
			}
		}
		return out
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		return []string{
			"/opt/google/chrome/chrome",
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}
}

func pathNames(goos string) []string {
	if goos == "windows" {
		return []string{"chrome.exe", "chrome"}
	}
	return []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"}
}

func isExecutableFile(p string) bool {
	info, err := stat(p)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
