// Package cryptox implements the symmetric cipher used for health log
// payloads, key generation and derivation, password hashing and wiping of
// sensitive buffers.
//
// Ciphertexts are self-describing strings:
//
//	base64( version(1) | salt(16) | nonce(12) | AES-256-GCM(plaintext) )
//
// The AES key is derived per call with HKDF-SHA256 from the caller's key and
// the fresh salt, so any printable string can serve as a key and two
// encryptions of the same plaintext never produce the same ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/healthlog/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	formatVersion byte = 1
	saltSize           = 16
	nonceSize          = 12
	aesKeySize         = 32

	// KeySize is the number of random bytes behind a generated key.
	KeySize = 32
)

var hkdfInfo = []byte("healthlog/payload/v1")

var errMalformed = errors.New("malformed ciphertext")

// Encrypt seals plaintext under key and returns the encoded ciphertext.
func Encrypt(plaintext, key string) (string, error) {
	if plaintext == "" || key == "" {
		return "", common.E(common.KindInvalidInput, "encrypt", errors.New("plaintext and key are required"))
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", common.E(common.KindEncryptionFailed, "encrypt", fmt.Errorf("salt: %w", err))
	}

	aead, err := newAEAD(key, salt)
	if err != nil {
		return "", common.E(common.KindEncryptionFailed, "encrypt", err)
	}

	out := make([]byte, 0, 1+saltSize+nonceSize+len(plaintext)+aead.Overhead())
	out = append(out, formatVersion)
	out = append(out, salt...)

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", common.E(common.KindEncryptionFailed, "encrypt", fmt.Errorf("nonce: %w", err))
	}
	out = append(out, nonce...)

	pt := []byte(plaintext)
	out = aead.Seal(out, nonce, pt, []byte{formatVersion})
	Wipe(pt)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt. A wrong key and a damaged
// ciphertext both yield a KindDecryptionFailed error.
func Decrypt(ciphertext, key string) (string, error) {
	if ciphertext == "" || key == "" {
		return "", common.E(common.KindInvalidInput, "decrypt", errors.New("ciphertext and key are required"))
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", common.E(common.KindDecryptionFailed, "decrypt", errMalformed)
	}
	if len(raw) < 1+saltSize+nonceSize || raw[0] != formatVersion {
		return "", common.E(common.KindDecryptionFailed, "decrypt", errMalformed)
	}

	salt := raw[1 : 1+saltSize]
	nonce := raw[1+saltSize : 1+saltSize+nonceSize]
	body := raw[1+saltSize+nonceSize:]

	aead, err := newAEAD(key, salt)
	if err != nil {
		return "", common.E(common.KindDecryptionFailed, "decrypt", err)
	}

	pt, err := aead.Open(nil, nonce, body, []byte{formatVersion})
	if err != nil {
		return "", common.E(common.KindDecryptionFailed, "decrypt", errors.New("wrong key or corrupted data"))
	}
	defer Wipe(pt)

	return string(pt), nil
}

// GenerateKey returns KeySize random bytes encoded as standard base64.
func GenerateKey() (string, error) {
	b := make([]byte, KeySize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	defer Wipe(b)
	return base64.StdEncoding.EncodeToString(b), nil
}

// Wipe zeroes b in place. Go strings are immutable, so only byte slices can
// be scrubbed; copies made by the runtime are out of reach.
func Wipe(b []byte) {
	common.WipeByteArray(b)
}

func newAEAD(key string, salt []byte) (cipher.AEAD, error) {
	ikm := []byte(key)
	defer Wipe(ikm)

	aesKey := make([]byte, aesKeySize)
	defer Wipe(aesKey)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, hkdfInfo), aesKey); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
