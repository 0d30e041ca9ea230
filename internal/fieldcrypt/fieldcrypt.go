// ABOUTME: Per-field symmetric encryption with AES-256-GCM
// ABOUTME: Each sealed value is hex(nonce):hex(ciphertext), independently decryptable
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrBadCiphertext is returned when a stored value cannot be decrypted.
// Callers treat the field as absent rather than failing the whole read.
var ErrBadCiphertext = errors.New("ciphertext is malformed or key mismatch")

// Cipher seals and opens individual field values. A fresh random nonce is
// drawn per seal, so the same plaintext never produces the same stored value.
type Cipher struct {
	aead cipher.AEAD
}

// New creates a Cipher from a 32-byte root key.
func New(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext into the self-describing wire form
// "<hex nonce>:<hex ciphertext>".
func (c *Cipher) Seal(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	ct := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ct), nil
}

// Open decrypts a sealed value. Any parse or authentication failure maps to
// ErrBadCiphertext; no partial plaintext is ever returned.
func (c *Cipher) Open(sealed string) (string, error) {
	nonceHex, ctHex, ok := strings.Cut(sealed, ":")
	if !ok {
		return "", ErrBadCiphertext
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", ErrBadCiphertext
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", ErrBadCiphertext
	}
	pt, err := c.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrBadCiphertext
	}
	return string(pt), nil
}
