// Package cryptox derives and verifies room passkey digests.
//
// Room records never carry the plain passkey: the creator stores a random
// salt and the argon2id digest of passkey+salt, and every later accessor
// recomputes the digest from what they typed.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32

	argonTime    = 1
	argonMemory  = 19 * 1024
	argonThreads = 1
)

// DerivePasskey returns the argon2id digest of passkey under salt.
func DerivePasskey(passkey string, salt []byte) []byte {
	return argon2.IDKey([]byte(passkey), salt, argonTime, argonMemory, argonThreads, keySize)
}

// NewPasskeyDigest generates a fresh salt and derives the digest for passkey.
func NewPasskeyDigest(passkey string) (digest, salt []byte, err error) {
	salt = make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("salt: %w", err)
	}
	return DerivePasskey(passkey, salt), salt, nil
}

// VerifyPasskey reports whether candidate derives to digest under salt.
func VerifyPasskey(candidate string, salt, digest []byte) bool {
	if len(digest) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(DerivePasskey(candidate, salt), digest) == 1
}
