package profile

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

const crashedPrefs = `{"browser":{"has_seen_welcome_page":true},"profile":{"avatar_index":26,"exit_type":"Crashed","exited_cleanly":false,"name":"Person 1"},"session":{"restore_on_startup":1}}`

func TestPatchExitState(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestManager(fs, nil)
	path := PreferencesPath("/p")
	_ = afero.WriteFile(fs, path, []byte(crashedPrefs), 0644)

	if err := m.PatchExitState("/p"); err != nil {
		t.Fatalf("PatchExitState: %v", err)
	}
	data, _ := afero.ReadFile(fs, path)
	if got := gjson.GetBytes(data, "profile.exit_type").String(); got != "Normal" {
		t.Errorf("exit_type = %q", got)
	}
	if !gjson.GetBytes(data, "profile.exited_cleanly").Bool() {
		t.Error("exited_cleanly should be true")
	}
	want := strings.NewReplacer(`"Crashed"`, `"Normal"`, `"exited_cleanly":false`, `"exited_cleanly":true`).Replace(crashedPrefs)
	if string(data) != want {
		t.Errorf("other content changed:\n got %s\nwant %s", data, want)
	}
	info, _ := fs.Stat(path)
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode should be preserved, got %o", info.Mode().Perm())
	}
}

func TestPatchExitState_AddsMissingFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newTestManager(fs, nil)
	_ = afero.WriteFile(fs, PreferencesPath("/p"), []byte(`{"extensions":{"settings":{}}}`), 0600)

	if err := m.PatchExitState("/p"); err != nil {
		t.Fatalf("PatchExitState: %v", err)
	}
	data, _ := afero.ReadFile(fs, PreferencesPath("/p"))
	if gjson.GetBytes(data, "profile.exit_type").String() != "Normal" {
		t.Errorf("field not added: %s", data)
	}
	if !gjson.GetBytes(data, "extensions.settings").IsObject() {
		t.Errorf("existing content lost: %s", data)
	}
}

func TestPatchExitState_MissingFileIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := newTestManager(fs, nil).PatchExitState("/nowhere"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if ok, _ := afero.Exists(fs, PreferencesPath("/nowhere")); ok {
		t.Error("no file should be created")
	}
}

func TestPatchExitState_InvalidJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, PreferencesPath("/p"), []byte(`{"profile":`), 0600)
	if err := newTestManager(fs, nil).PatchExitState("/p"); err == nil {
		t.Fatal("expected error for truncated preferences")
	}
}
