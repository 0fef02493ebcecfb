// Package credman keeps a captured cookie set encrypted at rest. The set is
// serialized to JSON, sealed with AES-256-GCM and written atomically; the
// key lives in the OS keyring, or in a key file when no keyring exists.
package credman

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/evilive3000/apiless-upload/internal/cookies"
	"github.com/evilive3000/apiless-upload/pkg/credman/encryption"
	"github.com/evilive3000/apiless-upload/pkg/credman/keyring"
)

// ErrEmptyVault is returned by Load when no set has been saved.
var ErrEmptyVault = errors.New("cookie vault is empty")

// Vault is an encrypted cookie store at a single path.
type Vault struct {
	fs   afero.Fs
	path string
	key  []byte
}

// NewVault returns a Vault that seals with key.
func NewVault(fs afero.Fs, path string, key []byte) (*Vault, error) {
	if len(key) != encryption.KeySize {
		return nil, encryption.ErrBadKey
	}
	return &Vault{fs: fs, path: path, key: key}, nil
}

// OpenDefault resolves the key (keyring first, then a key file in
// configDir) and returns the vault at configDir/fileName.
func OpenDefault(fs afero.Fs, service, configDir, fileName string) (*Vault, error) {
	key, _, err := keyring.Resolve(keyring.NewKeyring(service), keyring.NewFileKeyStore(fs, configDir))
	if err != nil {
		return nil, fmt.Errorf("resolve vault key: %w", err)
	}
	return NewVault(fs, filepath.Join(configDir, fileName), key)
}

// Path returns the vault file location.
func (v *Vault) Path() string { return v.path }

// Save replaces the vault contents with set.
func (v *Vault) Save(set cookies.Set) error {
	plain, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	sealed, err := encryption.Seal(plain, v.key)
	if err != nil {
		return fmt.Errorf("seal cookies: %w", err)
	}
	dir := filepath.Dir(v.path)
	if err := v.fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}
	tmp, err := afero.TempFile(v.fs, dir, ".vault-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp vault: %w", err)
	}
	name := tmp.Name()
	_, werr := tmp.Write(sealed)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		v.fs.Remove(name)
		return fmt.Errorf("write vault: %w", errors.Join(werr, cerr))
	}
	if err := v.fs.Chmod(name, 0600); err != nil {
		v.fs.Remove(name)
		return fmt.Errorf("chmod vault: %w", err)
	}
	if err := v.fs.Rename(name, v.path); err != nil {
		v.fs.Remove(name)
		return fmt.Errorf("rename vault: %w", err)
	}
	return nil
}

// Load decrypts the stored set. It fails with ErrEmptyVault when the vault
// file is missing or holds an empty set.
func (v *Vault) Load() (cookies.Set, error) {
	sealed, err := afero.ReadFile(v.fs, v.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrEmptyVault
		}
		return nil, fmt.Errorf("read vault: %w", err)
	}
	plain, err := encryption.Open(sealed, v.key)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	var set cookies.Set
	if err := json.Unmarshal(plain, &set); err != nil {
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	if len(set) == 0 {
		return nil, ErrEmptyVault
	}
	return set, nil
}

// Clear removes the vault file. Clearing an absent vault is not an error.
func (v *Vault) Clear() error {
	err := v.fs.Remove(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
