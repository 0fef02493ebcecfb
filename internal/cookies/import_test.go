package cookies

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

func unixToChrome(unix int64) int64 {
	return (unix + chromeEpochOffsetSeconds) * 1_000_000
}

type chromeRow struct {
	Name      string
	Value     string
	Encrypted []byte
	Host      string
	Expires   int64 // chrome microseconds, 0 for session
	Secure    int
	HTTPOnly  int
	SameSite  int
}

func createChromeFixture(t *testing.T, dir string, rows []chromeRow) string {
	t.Helper()
	path := filepath.Join(dir, "Cookies")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE cookies (
        creation_utc INTEGER NOT NULL,
        host_key TEXT NOT NULL,
        name TEXT NOT NULL,
        value TEXT NOT NULL,
        encrypted_value BLOB NOT NULL DEFAULT x'',
        path TEXT NOT NULL DEFAULT '/',
        expires_utc INTEGER NOT NULL DEFAULT 0,
        is_secure INTEGER NOT NULL DEFAULT 0,
        is_httponly INTEGER NOT NULL DEFAULT 0,
        samesite INTEGER NOT NULL DEFAULT -1
    )`)
	if err != nil {
		t.Fatalf("create cookies table: %v", err)
	}
	for _, r := range rows {
		enc := r.Encrypted
		if enc == nil {
			enc = []byte{}
		}
		_, err = db.Exec(`INSERT INTO cookies (creation_utc, host_key, name, value, encrypted_value, path, expires_utc, is_secure, is_httponly, samesite)
            VALUES (0, ?, ?, ?, ?, '/', ?, ?, ?, ?)`,
			r.Host, r.Name, r.Value, enc, r.Expires, r.Secure, r.HTTPOnly, r.SameSite)
		if err != nil {
			t.Fatalf("insert row: %v", err)
		}
	}
	return path
}

type firefoxRow struct {
	Name     string
	Value    string
	Host     string
	Expiry   int64
	Secure   int
	HTTPOnly int
	SameSite int
}

func createFirefoxFixture(t *testing.T, dir string, rows []firefoxRow) string {
	t.Helper()
	path := filepath.Join(dir, "cookies.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE moz_cookies (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        value TEXT NOT NULL,
        host TEXT NOT NULL,
        path TEXT NOT NULL DEFAULT '/',
        expiry INTEGER NOT NULL DEFAULT 0,
        isSecure INTEGER NOT NULL DEFAULT 0,
        isHttpOnly INTEGER NOT NULL DEFAULT 0,
        sameSite INTEGER NOT NULL DEFAULT 0
    )`)
	if err != nil {
		t.Fatalf("create moz_cookies table: %v", err)
	}
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO moz_cookies (name, value, host, path, expiry, isSecure, isHttpOnly, sameSite) VALUES (?, ?, ?, '/', ?, ?, ?, ?)`,
			r.Name, r.Value, r.Host, r.Expiry, r.Secure, r.HTTPOnly, r.SameSite)
		if err != nil {
			t.Fatalf("insert row: %v", err)
		}
	}
	return path
}

func TestImport_Chrome(t *testing.T) {
	dir := t.TempDir()
	future := unixToChrome(time.Now().Add(24 * time.Hour).Unix())
	past := unixToChrome(time.Now().Add(-24 * time.Hour).Unix())
	path := createChromeFixture(t, dir, []chromeRow{
		{Name: "SID", Value: "v1", Host: ".google.com", Expires: future, Secure: 1, HTTPOnly: 1, SameSite: 2},
		{Name: "LOGIN_INFO", Value: "", Encrypted: []byte("v10..."), Host: ".youtube.com", Expires: future},
		{Name: "YSC", Value: "v3", Host: ".youtube.com", Expires: 0},
		{Name: "old", Value: "v4", Host: ".youtube.com", Expires: past},
		{Name: "other", Value: "v5", Host: ".example.com", Expires: future},
	})

	res, err := Import(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Source.Format != FormatChrome {
		t.Errorf("expected chrome format, got %s", res.Source.Format)
	}
	if got := strings.Join(res.Set.Names(), ","); got != "SID,YSC" {
		t.Fatalf("unexpected cookies %s", got)
	}
	if res.Skipped != 1 {
		t.Errorf("expected 1 encrypted row skipped, got %d", res.Skipped)
	}
	sid := res.Set[0]
	if !sid.Secure || !sid.HTTPOnly || sid.SameSite != "Strict" {
		t.Errorf("flags not mapped: %+v", sid)
	}
	wantExpiry := time.Now().Add(24 * time.Hour).Unix()
	if d := sid.Expiry - wantExpiry; d < -5 || d > 5 {
		t.Errorf("expiry conversion off by %d seconds", d)
	}
	if !res.Set[1].IsSession() {
		t.Error("expires_utc 0 should import as a session cookie")
	}
}

func TestImport_ChromeCustomDomain(t *testing.T) {
	dir := t.TempDir()
	future := unixToChrome(time.Now().Add(time.Hour).Unix())
	path := createChromeFixture(t, dir, []chromeRow{
		{Name: "a", Value: "1", Host: ".example.com", Expires: future},
		{Name: "b", Value: "2", Host: ".youtube.com", Expires: future},
	})
	res, err := Import(afero.NewOsFs(), path, "example.com")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Set) != 1 || res.Set[0].Name != "a" {
		t.Errorf("unexpected cookies %v", res.Set.Names())
	}
}

func TestImport_Firefox(t *testing.T) {
	dir := t.TempDir()
	future := time.Now().Add(24 * time.Hour).Unix()
	path := createFirefoxFixture(t, dir, []firefoxRow{
		{Name: "SID", Value: "v1", Host: ".google.com", Expiry: future, Secure: 1, HTTPOnly: 1, SameSite: 1},
		{Name: "PREF", Value: "v2", Host: ".youtube.com", Expiry: future},
		{Name: "gone", Value: "v3", Host: ".youtube.com", Expiry: time.Now().Add(-time.Hour).Unix()},
	})
	res, err := Import(afero.NewOsFs(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Source.Format != FormatFirefox {
		t.Errorf("expected firefox format, got %s", res.Source.Format)
	}
	if got := strings.Join(res.Set.Names(), ","); got != "SID,PREF" {
		t.Fatalf("unexpected cookies %s", got)
	}
	if res.Set[0].SameSite != "Lax" || res.Set[0].Expiry != future {
		t.Errorf("unexpected first cookie %+v", res.Set[0])
	}
}

func TestImport_Netscape(t *testing.T) {
	fs := afero.NewMemMapFs()
	future := time.Now().Add(time.Hour).Unix()
	content := fmt.Sprintf("# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t%d\tSID\tabc\n", future)
	if err := afero.WriteFile(fs, "/home/u/cookies.txt", []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	res, err := Import(fs, "/home/u/cookies.txt")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Source.Format != FormatNetscape || len(res.Set) != 1 {
		t.Errorf("unexpected result %+v", res.Source)
	}
}

func TestImport_JSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `[{"name":"SID","value":"x","domain":".youtube.com","path":"/"},{"name":"o","value":"y","domain":".example.com","path":"/"}]`
	if err := afero.WriteFile(fs, "/export.json", []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	res, err := Import(fs, "/export.json")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Source.Format != FormatJSON || len(res.Set) != 1 || res.Set[0].Name != "SID" {
		t.Errorf("unexpected result %+v %v", res.Source, res.Set.Names())
	}
}

func TestImport_TextStoreNotOnDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/only/in/memory.txt", []byte("# Netscape HTTP Cookie File\n"), 0600)
	if _, err := Import(afero.NewOsFs(), "/only/in/memory.txt"); err == nil {
		t.Fatal("expected an error when the store is not on the given filesystem")
	}
	if _, err := Import(fs, "/only/in/memory.txt"); err != nil {
		t.Fatalf("Import: %v", err)
	}
}

func TestDetectFormat_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	_ = os.WriteFile(empty, nil, 0600)
	garbage := filepath.Join(dir, "garbage")
	_ = os.WriteFile(garbage, []byte("hello world"), 0600)

	for _, p := range []string{filepath.Join(dir, "missing"), dir, empty, garbage} {
		if _, err := DetectFormat(afero.NewOsFs(), p); err == nil {
			t.Errorf("expected error for %s", p)
		}
	}
}

func TestDetectFormat_UnknownSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE things (id INTEGER)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := DetectFormat(afero.NewOsFs(), path); err == nil {
		t.Fatal("expected unsupported schema error")
	}
}

func TestWithSnapshot_CopiesCompanions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Cookies")
	_ = os.WriteFile(src, []byte("main"), 0600)
	_ = os.WriteFile(src+"-wal", []byte("wal"), 0600)

	var seen string
	err := withSnapshot(src, func(copied string) error {
		seen = copied
		data, err := os.ReadFile(copied + "-wal")
		if err != nil {
			return err
		}
		if string(data) != "wal" {
			t.Errorf("unexpected wal contents %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withSnapshot: %v", err)
	}
	if seen == src {
		t.Error("callback should receive the copy, not the source")
	}
	if _, err := os.Stat(filepath.Dir(seen)); !os.IsNotExist(err) {
		t.Error("snapshot dir should be removed afterwards")
	}
}
