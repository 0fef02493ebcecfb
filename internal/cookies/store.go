package cookies

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrNotJSON is returned by Load for paths that do not end in ".json".
	ErrNotJSON = errors.New("cookie file must have a .json extension")
	// ErrNoCookieFile is returned by Load when the file is missing.
	ErrNoCookieFile = errors.New("cookie file does not exist")
	// ErrEmptyCookieFile is returned by Load when the file holds no cookies.
	ErrEmptyCookieFile = errors.New("cookie file contains no cookies")
)

// Save writes set to path as a single JSON array. The file is written to a
// temporary sibling first and renamed into place, with mode 0600.
func Save(fs afero.Fs, path string, set Set) error {
	if set == nil {
		set = Set{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	tmp, err := afero.TempFile(fs, dir, ".cookies-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cookie file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("write cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("close temp cookie file: %w", err)
	}
	if err := fs.Chmod(tmpName, 0600); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("chmod cookie file: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("rename cookie file: %w", err)
	}
	return nil
}

// Load reads a set written by Save. The path must end in ".json", the file
// must exist and it must contain a non-empty array.
func Load(fs afero.Fs, path string) (Set, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoCookieFile, path)
		}
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", path, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCookieFile, path)
	}
	return set, nil
}
