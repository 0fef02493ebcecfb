package cookies

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestDefaultProfileDir(t *testing.T) {
	tests := []struct {
		name string
		ini  string
		want string
	}{
		{
			name: "install section wins",
			ini: "[Profile1]\nName=old\nPath=old.default\nDefault=1\n\n" +
				"[Install4F96D1932A9F858E]\nDefault=abcd.default-release\nLocked=1\n",
			want: "/ff/abcd.default-release",
		},
		{
			name: "marked profile",
			ini:  "[General]\nStartWithLastProfile=1\n\n[Profile0]\nName=a\nPath=a.default\n\n[Profile1]\nName=b\nPath=Profiles/b.main\nDefault=1\n",
			want: "/ff/Profiles/b.main",
		},
		{
			name: "marked profile in last section",
			ini:  "[Profile0]\nPath=only.one\nDefault=1",
			want: "/ff/only.one",
		},
		{
			name: "no default",
			ini:  "[Profile0]\nPath=a.default\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			_ = afero.WriteFile(fs, "/ff/profiles.ini", []byte(tt.ini), 0644)
			got := defaultProfileDir(fs, "/ff/profiles.ini")
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("defaultProfileDir() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := defaultProfileDir(afero.NewMemMapFs(), "/missing/profiles.ini"); got != "" {
		t.Errorf("missing ini gave %q", got)
	}
}

func TestFindStores_Order(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/ff/profiles.ini", []byte("[Profile0]\nPath=p\nDefault=1\n"), 0644)
	_ = afero.WriteFile(fs, "/ff/p/cookies.sqlite", []byte("db"), 0600)
	_ = afero.WriteFile(fs, "/chrome/Default/Cookies", []byte("db"), 0600)
	_ = fs.MkdirAll("/edge/Default/Network/Cookies", 0755)

	specs := []browserStores{
		{Browser: "Firefox", ProfilesIni: []string{"/nope/profiles.ini", "/ff/profiles.ini"}},
		{Browser: "LibreWolf", ProfilesIni: []string{"/lw/profiles.ini"}},
		{Browser: "Chrome", Paths: []string{"/chrome/Default/Network/Cookies", "/chrome/Default/Cookies"}},
		{Browser: "Edge", Paths: []string{"/edge/Default/Network/Cookies"}},
	}
	got := findStores(fs, specs)
	if len(got) != 2 {
		t.Fatalf("found %d stores, want 2: %+v", len(got), got)
	}
	if got[0].Browser != "Firefox" || got[0].Path != filepath.FromSlash("/ff/p/cookies.sqlite") {
		t.Errorf("first store = %+v", got[0])
	}
	if got[1].Browser != "Chrome" || got[1].Path != "/chrome/Default/Cookies" {
		t.Errorf("second store = %+v", got[1])
	}
}

func TestImportFirst_SkipsUnusableStores(t *testing.T) {
	dir := t.TempDir()
	future := unixToChrome(time.Now().Add(time.Hour).Unix())
	empty := createChromeFixture(t, mkdir(t, dir, "empty"), []chromeRow{
		{Name: "x", Value: "1", Host: ".example.com", Expires: future},
	})
	good := createChromeFixture(t, mkdir(t, dir, "good"), []chromeRow{
		{Name: "SID", Value: "1", Host: ".youtube.com", Expires: future},
	})

	res, err := importFirst(afero.NewOsFs(), []StoreCandidate{
		{Browser: "Chromium", Path: filepath.Join(dir, "missing", "Cookies")},
		{Browser: "Edge", Path: empty},
		{Browser: "Chrome", Path: good},
	}, nil)
	if err != nil {
		t.Fatalf("importFirst: %v", err)
	}
	if res.Source.Browser != "Chrome" || res.Source.Path != good {
		t.Errorf("imported from %+v", res.Source)
	}
	if len(res.Set) != 1 || res.Set[0].Name != "SID" {
		t.Errorf("unexpected cookies %v", res.Set.Names())
	}
}

func TestImportFirst_Nothing(t *testing.T) {
	_, err := importFirst(afero.NewMemMapFs(), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "no browser cookie store") {
		t.Fatalf("unexpected error %v", err)
	}
}

func mkdir(t *testing.T, parent, name string) string {
	t.Helper()
	p := filepath.Join(parent, name)
	if err := afero.NewOsFs().MkdirAll(p, 0755); err != nil {
		t.Fatal(err)
	}
	return p
}
