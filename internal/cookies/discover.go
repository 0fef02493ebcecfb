package cookies

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// browserStores lists where one browser keeps its cookie database.
type browserStores struct {
	Browser string
	// Paths are Chromium-family database candidates, first existing wins.
	Paths []string
	// ProfilesIni are Firefox-family profiles.ini candidates; the default
	// profile's cookies.sqlite is used.
	ProfilesIni []string
}

// StoreCandidate is a browser cookie database found on disk.
type StoreCandidate struct {
	Browser string
	Path    string
}

// defaultProfileDir returns the default profile directory named by a
// profiles.ini, or "" when there is none. The [Install*] Default= key of
// current Firefox builds wins over a [Profile*] section marked Default=1.
func defaultProfileDir(fs afero.Fs, iniPath string) string {
	data, err := afero.ReadFile(fs, iniPath)
	if err != nil {
		return ""
	}
	base := filepath.Dir(iniPath)

	var install, marked string
	var section, path string
	var isDefault bool
	flush := func() {
		if strings.HasPrefix(section, "Profile") && isDefault && marked == "" && path != "" {
			marked = path
		}
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			flush()
			section = strings.Trim(line, "[]")
			path, isDefault = "", false
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch {
		case strings.HasPrefix(section, "Install") && k == "Default" && install == "":
			install = filepath.Join(base, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Path":
			path = filepath.Join(base, filepath.FromSlash(v))
		case strings.HasPrefix(section, "Profile") && k == "Default" && v == "1":
			isDefault = true
		}
	}
	flush()
	if install != "" {
		return install
	}
	return marked
}

func findStores(fs afero.Fs, specs []browserStores) []StoreCandidate {
	var found []StoreCandidate
	exists := func(p string) bool {
		fi, err := fs.Stat(p)
		return err == nil && !fi.IsDir()
	}
	for _, spec := range specs {
		for _, ini := range spec.ProfilesIni {
			dir := defaultProfileDir(fs, ini)
			if dir == "" {
				continue
			}
			if p := filepath.Join(dir, "cookies.sqlite"); exists(p) {
				found = append(found, StoreCandidate{Browser: spec.Browser, Path: p})
				break
			}
		}
		for _, p := range spec.Paths {
			if exists(p) {
				found = append(found, StoreCandidate{Browser: spec.Browser, Path: p})
				break
			}
		}
	}
	return found
}

// FindBrowserStores lists the installed browsers' default cookie
// databases in priority order: Firefox, LibreWolf, Chrome, Chromium, Edge,
// Brave.
func FindBrowserStores(fs afero.Fs) []StoreCandidate {
	return findStores(fs, defaultBrowserStores())
}

// ImportFromBrowser imports from the first browser store that yields
// usable cookies for domains.
func ImportFromBrowser(fs afero.Fs, domains ...string) (*ImportResult, error) {
	return importFirst(fs, FindBrowserStores(fs), domains)
}

func importFirst(fs afero.Fs, candidates []StoreCandidate, domains []string) (*ImportResult, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no browser cookie store found (tried Firefox, LibreWolf, Chrome, Chromium, Edge, Brave)")
	}
	var errs []string
	for _, c := range candidates {
		res, err := Import(fs, c.Path, domains...)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", c.Browser, err))
			continue
		}
		if len(res.Set) == 0 {
			errs = append(errs, c.Browser+": no usable cookies")
			continue
		}
		res.Source.Browser = c.Browser
		return res, nil
	}
	return nil, fmt.Errorf("no browser store had usable cookies (%s)", strings.Join(errs, "; "))
}
