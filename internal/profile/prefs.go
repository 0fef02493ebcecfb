package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/evilive3000/apiless-upload/common"
)

const (
	exitTypePath      = "profile.exit_type"
	exitedCleanlyPath = "profile.exited_cleanly"
)

// PreferencesPath is where Chrome keeps the default profile's preferences.
func PreferencesPath(dir string) string {
	return filepath.Join(dir, "Default", "Preferences")
}

// PatchExitState marks the profile as cleanly shut down so the next
// browser started on it does not offer to restore the previous session.
// Only the two exit fields are rewritten; the rest of the file is kept
// byte for byte. A missing Preferences file is not an error.
//
// The browser that owned the profile must have exited already, otherwise
// it rewrites the file on shutdown.
func (m *Manager) PatchExitState(dir string) error {
	path := PreferencesPath(dir)
	data, err := afero.ReadFile(m.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.log.Info("no preferences at %s, nothing to patch", path)
			return nil
		}
		return common.WrapError(common.KindEnvironment, "profile.patch", "read preferences", err)
	}
	patched, err := patchExitState(data)
	if err != nil {
		return common.WrapError(common.KindEnvironment, "profile.patch", "rewrite preferences", err)
	}
	info, err := m.fs.Stat(path)
	mode := os.FileMode(0600)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := afero.WriteFile(m.fs, path, patched, mode); err != nil {
		return common.WrapError(common.KindEnvironment, "profile.patch", "write preferences", err)
	}
	return nil
}

func patchExitState(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("preferences file is not valid JSON")
	}
	out, err := sjson.SetBytes(data, exitTypePath, "Normal")
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, exitedCleanlyPath, true)
}
