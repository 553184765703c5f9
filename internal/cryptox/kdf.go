package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultIterations is the PBKDF2 work factor used for password keys.
const DefaultIterations = 10000

// DeriveKey turns a password and salt into a key with PBKDF2-HMAC-SHA256.
// The result is deterministic for the same inputs and is encoded like
// GenerateKey output.
func DeriveKey(password, salt string, iterations int) (string, error) {
	if password == "" {
		return "", common.E(common.KindInvalidInput, "derive key", errors.New("password is required"))
	}
	if iterations <= 0 {
		return "", common.E(common.KindInvalidInput, "derive key", errors.New("iterations must be positive"))
	}

	pw := []byte(password)
	defer Wipe(pw)

	k := pbkdf2.Key(pw, []byte(salt), iterations, KeySize, sha256.New)
	defer Wipe(k)

	return base64.StdEncoding.EncodeToString(k), nil
}

// MakeVerifier returns a fingerprint of key that can be stored to check a
// candidate key later without keeping the key itself.
func MakeVerifier(key string) string {
	sum := sha256.Sum256([]byte(key))
	return base64.StdEncoding.EncodeToString(sum[:])
}
