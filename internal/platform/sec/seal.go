// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealCorrupt is returned when a sealed blob fails authentication or is
// structurally malformed. Callers treat the record as absent and purge it.
var ErrSealCorrupt = errors.New("sec: sealed record corrupt or tampered")

// Sealer provides authenticated encryption for session records at rest.
//
// # Why seal?
//
// Session records hold live bearer credentials. Both storage backends (Redis,
// PostgreSQL) are shared infrastructure; sealing ensures a leaked dump does
// not leak usable tokens, and that a tampered record reads as absent rather
// than as someone else's session.
type Sealer struct {
	key [chacha20poly1305.KeySize]byte
}

// NewSealer derives a ChaCha20-Poly1305 key from the configured session
// secret. The secret is hashed so operators may supply any sufficiently
// random string without worrying about exact key length.
func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sec: session secret must be at least 32 bytes, got %d", len(secret))
	}

	sealer := &Sealer{}
	sealer.key = sha256.Sum256([]byte(secret))
	return sealer, nil
}

// Seal encrypts plaintext and returns a base64 blob of nonce||ciphertext.
func (sealer *Sealer) Seal(plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.New(sealer.key[:])
	if err != nil {
		return "", fmt.Errorf("sec: cipher init failed: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("sec: nonce generation failed: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by [Sealer.Seal].
//
// Any structural or authentication failure returns [ErrSealCorrupt] — the
// distinction between "tampered", "truncated", and "wrong key" is
// deliberately not exposed.
func (sealer *Sealer) Open(blob string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, ErrSealCorrupt
	}

	aead, err := chacha20poly1305.New(sealer.key[:])
	if err != nil {
		return nil, fmt.Errorf("sec: cipher init failed: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return nil, ErrSealCorrupt
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealCorrupt
	}

	return plaintext, nil
}
