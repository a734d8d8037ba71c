package session

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

var errSealOpen = errors.New("session: sealed payload could not be opened")

// sealKey derives the fixed-size secretbox key from the configured secret.
func sealKey(secret string) *[32]byte {
	sum := sha256.Sum256([]byte(secret))
	return &sum
}

// seal encrypts a session payload before it reaches Redis. Records contain
// the upstream bearer token, so they are never stored in the clear.
func seal(key *[32]byte, plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, &nonce, key), nil
}

// open decrypts a sealed payload. Tampered or truncated payloads fail.
func open(key *[32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < 24 {
		return nil, errSealOpen
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, key)
	if !ok {
		return nil, errSealOpen
	}
	return plain, nil
}
