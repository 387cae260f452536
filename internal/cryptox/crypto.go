// Package cryptox implements the file encryption used by the client and the
// envelope-key wrapping used by the server.
//
// Every file is encrypted with AES-256-GCM under a fresh random data key.
// The data key travels to the server alongside the ciphertext, where it is
// wrapped (encrypted again) under the server's master key before being
// persisted. Neither the plaintext nor an unwrapped key is ever stored.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/avolkov/fileshare/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// NewDataKey returns a fresh random per-file encryption key.
func NewDataKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// DeriveMasterKey stretches a secret into a 32-byte AES key using Argon2id.
// The server uses it to turn its configured secret into the key-wrapping key.
func DeriveMasterKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// Encrypt seals plaintext with AES-GCM under key. The random nonce is
// prepended to the ciphertext so the result is a single self-contained blob.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt with the same key.
func Decrypt(blob, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(blob))
	}

	nonce, ciphertext := blob[:aesgcm.NonceSize()], blob[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// WrapKey encrypts a per-file data key under the master key so it can be
// stored server-side without exposing it.
func WrapKey(dataKey, masterKey []byte) ([]byte, error) {
	return Encrypt(dataKey, masterKey)
}

// UnwrapKey reverses WrapKey.
func UnwrapKey(wrapped, masterKey []byte) ([]byte, error) {
	key, err := Decrypt(wrapped, masterKey)
	if err != nil {
		return nil, fmt.Errorf("unwrap key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("unwrapped key has size %d, want %d", len(key), KeySize)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
