// Package encryption seals small blobs with AES-256-GCM.
//
// Sealed output is "gcm1" || nonce || ciphertext.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const gcmPrefix = "gcm1"

// KeySize is the required key length in bytes.
const KeySize = 32

var (
	ErrBadKey       = errors.New("encryption key must be 32 bytes")
	ErrNotSealed    = errors.New("data is not a sealed blob")
	ErrShortPayload = errors.New("sealed blob too short")
)

var randReader io.Reader = rand.Reader

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrBadKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key with a fresh random nonce.
func Seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. A wrong key or tampered data fails authentication.
func Open(sealed, key []byte) ([]byte, error) {
	if !bytes.HasPrefix(sealed, []byte(gcmPrefix)) {
		return nil, ErrNotSealed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	body := sealed[len(gcmPrefix):]
	if len(body) < gcm.NonceSize()+gcm.Overhead() {
		return nil, ErrShortPayload
	}
	nonce, data := body[:gcm.NonceSize()], body[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
