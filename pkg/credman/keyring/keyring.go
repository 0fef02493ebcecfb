// Package keyring stores the vault key in the operating system keyring,
// falling back to a key file when no keyring service is reachable.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keySize = 32

// ErrNoKey is returned by GetKey when nothing has been stored yet.
var ErrNoKey = errors.New("no vault key stored")

// KeyStore persists one 32 byte key.
type KeyStore interface {
	GetKey() ([]byte, error)
	// SetKey generates, stores and returns a new key.
	SetKey() ([]byte, error)
	DeleteKey() error
}

// Keyring keeps the key hex-encoded under Service/User in the OS keyring.
type Keyring struct {
	Service string
	User    string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns the keyring entry used for the cookie vault.
func NewKeyring(service string) *Keyring {
	return &Keyring{Service: service, User: "cookie-vault"}
}

func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := keyringSet(k.Service, k.User, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.Service, k.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoKey
		}
		return nil, err
	}
	return decodeKey(s)
}

func (k *Keyring) DeleteKey() error {
	err := keyringDelete(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", keySize, len(key))
	}
	return key, nil
}

// Resolve returns the stored key from primary, creating one when none
// exists. When primary fails for any other reason (no secret service, a
// locked keychain) the fallback store is used the same way.
func Resolve(primary, fallback KeyStore) ([]byte, KeyStore, error) {
	key, err := getOrCreate(primary)
	if err == nil {
		return key, primary, nil
	}
	if fallback == nil {
		return nil, nil, err
	}
	key, ferr := getOrCreate(fallback)
	if ferr != nil {
		return nil, nil, fmt.Errorf("keyring: %v; key file: %w", err, ferr)
	}
	return key, fallback, nil
}

func getOrCreate(s KeyStore) ([]byte, error) {
	key, err := s.GetKey()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, ErrNoKey) {
		return nil, err
	}
	return s.SetKey()
}
