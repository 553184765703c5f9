// Package securestore keeps small secrets (encryption keys, salts, the
// session blob) in the local database, sealed under a per-device wrap key.
package securestore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// WrapKeySize is the length of the device wrap key.
const WrapKeySize = chacha20poly1305.KeySize

// Store is a string-valued secret store. Get returns an error matching
// common.ErrNotFound for missing slots.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SealedStore seals every value with XChaCha20-Poly1305 before handing it to
// the metadata repository. The slot name is bound as additional data, so a
// sealed value copied into another slot fails to open.
type SealedStore struct {
	repo    metadata.Repository
	wrapKey []byte
}

func NewSealedStore(repo metadata.Repository, wrapKey []byte) (*SealedStore, error) {
	if len(wrapKey) != WrapKeySize {
		return nil, common.Ef(common.KindInvalidInput, "open secure store", "wrap key must be %d bytes, got %d", WrapKeySize, len(wrapKey))
	}
	k := make([]byte, len(wrapKey))
	copy(k, wrapKey)
	return &SealedStore{repo: repo, wrapKey: k}, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}

	aead, err := chacha20poly1305.NewX(s.wrapKey)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", common.Ef(common.KindDecryptionFailed, "open secure value", "slot %q is truncated", key)
	}

	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, []byte(key))
	if err != nil {
		return "", common.E(common.KindDecryptionFailed, "open secure value", fmt.Errorf("slot %q: %w", key, err))
	}
	defer common.WipeByteArray(plain)

	return string(plain), nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return common.Ef(common.KindInvalidInput, "seal secure value", "empty slot name")
	}

	aead, err := chacha20poly1305.NewX(s.wrapKey)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(key))

	return s.repo.Set(ctx, key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// Has reports whether the slot exists without opening it.
func (s *SealedStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.repo.Get(ctx, key)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
