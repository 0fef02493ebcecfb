//go:build unix

package cookies

import (
	"os"
	"path/filepath"
	"runtime"
)

// chromiumStores returns the Network/Cookies and legacy Cookies paths of a
// Chromium-family Default profile under base.
func chromiumStores(name, base string) browserStores {
	def := filepath.Join(base, "Default")
	return browserStores{
		Browser: name,
		Paths:   []string{filepath.Join(def, "Network", "Cookies"), filepath.Join(def, "Cookies")},
	}
}

func browserStoresForHome(home, goos string) []browserStores {
	if goos == "darwin" {
		support := filepath.Join(home, "Library", "Application Support")
		return []browserStores{
			{Browser: "Firefox", ProfilesIni: []string{filepath.Join(support, "Firefox", "profiles.ini")}},
			{Browser: "LibreWolf", ProfilesIni: []string{filepath.Join(support, "librewolf", "profiles.ini")}},
			chromiumStores("Chrome", filepath.Join(support, "Google", "Chrome")),
			chromiumStores("Chromium", filepath.Join(support, "Chromium")),
			chromiumStores("Edge", filepath.Join(support, "Microsoft Edge")),
			chromiumStores("Brave", filepath.Join(support, "BraveSoftware", "Brave-Browser")),
		}
	}
	config := filepath.Join(home, ".config")
	return []browserStores{
		{Browser: "Firefox", ProfilesIni: []string{
			filepath.Join(home, ".mozilla", "firefox", "profiles.ini"),
			filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
		}},
		{Browser: "LibreWolf", ProfilesIni: []string{filepath.Join(home, ".librewolf", "profiles.ini")}},
		chromiumStores("Chrome", filepath.Join(config, "google-chrome")),
		chromiumStores("Chromium", filepath.Join(config, "chromium")),
		chromiumStores("Edge", filepath.Join(config, "microsoft-edge")),
		chromiumStores("Brave", filepath.Join(config, "BraveSoftware", "Brave-Browser")),
	}
}

func defaultBrowserStores() []browserStores {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return browserStoresForHome(home, runtime.GOOS)
}
