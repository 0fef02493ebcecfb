//go:build windows

package cookies

import (
	"os"
	"path/filepath"
)

func chromiumStores(name, base string) browserStores {
	def := filepath.Join(base, "User Data", "Default")
	return browserStores{
		Browser: name,
		Paths:   []string{filepath.Join(def, "Network", "Cookies"), filepath.Join(def, "Cookies")},
	}
}

// browserStoresForEnv builds the candidates from %LOCALAPPDATA% (Chromium
// family) and %APPDATA% (Firefox family).
func browserStoresForEnv(localAppData, appData string) []browserStores {
	return []browserStores{
		{Browser: "Firefox", ProfilesIni: []string{filepath.Join(appData, "Mozilla", "Firefox", "profiles.ini")}},
		{Browser: "LibreWolf", ProfilesIni: []string{filepath.Join(appData, "LibreWolf", "profiles.ini")}},
		chromiumStores("Chrome", filepath.Join(localAppData, "Google", "Chrome")),
		chromiumStores("Chromium", filepath.Join(localAppData, "Chromium")),
		chromiumStores("Edge", filepath.Join(localAppData, "Microsoft", "Edge")),
		chromiumStores("Brave", filepath.Join(localAppData, "BraveSoftware", "Brave-Browser")),
	}
}

func defaultBrowserStores() []browserStores {
	return browserStoresForEnv(os.Getenv("LOCALAPPDATA"), os.Getenv("APPDATA"))
}
