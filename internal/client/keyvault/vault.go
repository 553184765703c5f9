// Package keyvault manages one data encryption key per owner. Keys and their
// password salts live in the secure store under
// user_encryption_key_<owner> and encryption_salt_<owner>.
package keyvault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/client/securestore"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/cryptox"
	"github.com/dmitrijs2005/healthlog/internal/logging"
)

const saltSize = 16

type Vault struct {
	store      securestore.Store
	logger     logging.Logger
	iterations int
}

func New(store securestore.Store, logger logging.Logger) *Vault {
	return &Vault{
		store:      store,
		logger:     logger.With("module", "keyvault"),
		iterations: cryptox.DefaultIterations,
	}
}

func keySlot(ownerID string) string  { return common.EncryptionKeyPrefix + ownerID }
func saltSlot(ownerID string) string { return common.EncryptionSaltPrefix + ownerID }

// GenerateAndStore creates a fresh random key for the owner, replacing any
// existing one.
func (v *Vault) GenerateAndStore(ctx context.Context, ownerID string) (string, error) {
	const op = "generate key"
	if ownerID == "" {
		return "", common.Ef(common.KindInvalidInput, op, "owner id is required")
	}

	key, err := cryptox.GenerateKey()
	if err != nil {
		return "", common.E(common.KindEncryptionFailed, op, err)
	}
	if err := v.store.Set(ctx, keySlot(ownerID), key); err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}

	v.logger.Debug(ctx, "generated encryption key", "owner", ownerID)
	return key, nil
}

func (v *Vault) Get(ctx context.Context, ownerID string) (string, error) {
	const op = "get key"
	if ownerID == "" {
		return "", common.Ef(common.KindInvalidInput, op, "owner id is required")
	}

	key, err := v.store.Get(ctx, keySlot(ownerID))
	if errors.Is(err, common.ErrNotFound) {
		return "", common.Ef(common.KindNotFound, op, "no encryption key for owner %s", ownerID)
	}
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}
	return key, nil
}

// DeriveAndStoreFromPassword derives the owner's key from password with
// PBKDF2. The owner's salt is reused when present so the same password
// always yields the same key on this device.
func (v *Vault) DeriveAndStoreFromPassword(ctx context.Context, ownerID, password string) (string, error) {
	const op = "derive key"
	if ownerID == "" || password == "" {
		return "", common.Ef(common.KindInvalidInput, op, "owner id and password are required")
	}

	salt, err := v.store.Get(ctx, saltSlot(ownerID))
	switch {
	case errors.Is(err, common.ErrNotFound):
		salt = base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(saltSize))
		if err := v.store.Set(ctx, saltSlot(ownerID), salt); err != nil {
			return "", fmt.Errorf("%s failed: %w", op, err)
		}
	case err != nil:
		return "", fmt.Errorf("%s failed: %w", op, err)
	}

	key, err := cryptox.DeriveKey(password, salt, v.iterations)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}
	if err := v.store.Set(ctx, keySlot(ownerID), key); err != nil {
		return "", fmt.Errorf("%s failed: %w", op, err)
	}
	return key, nil
}

// Store puts key back as the owner's key, e.g. to undo a rotation whose
// re-encryption failed.
func (v *Vault) Store(ctx context.Context, ownerID, key string) error {
	const op = "store key"
	if ownerID == "" || key == "" {
		return common.Ef(common.KindInvalidInput, op, "owner id and key are required")
	}
	if err := v.store.Set(ctx, keySlot(ownerID), key); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return nil
}

// Remove deletes the owner's key and salt. Missing slots are not an error.
func (v *Vault) Remove(ctx context.Context, ownerID string) error {
	const op = "remove key"
	if ownerID == "" {
		return common.Ef(common.KindInvalidInput, op, "owner id is required")
	}
	if err := v.store.Delete(ctx, keySlot(ownerID)); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if err := v.store.Delete(ctx, saltSlot(ownerID)); err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	return nil
}

// Exists never fails; store errors read as false.
func (v *Vault) Exists(ctx context.Context, ownerID string) bool {
	if ownerID == "" {
		return false
	}
	_, err := v.store.Get(ctx, keySlot(ownerID))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		v.logger.Warn(ctx, "key lookup failed", "owner", ownerID, "error", err)
	}
	return err == nil
}

// Rotate replaces the owner's key with a new random one and returns both.
// Records encrypted under oldKey are left as they are; re-encrypting them is
// up to the caller.
func (v *Vault) Rotate(ctx context.Context, ownerID string) (oldKey, newKey string, err error) {
	const op = "rotate key"
	if ownerID == "" {
		return "", "", common.Ef(common.KindInvalidInput, op, "owner id is required")
	}

	oldKey, err = v.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", "", common.Ef(common.KindNotFound, op, "no encryption key for owner %s", ownerID)
		}
		return "", "", err
	}

	newKey, err = v.GenerateAndStore(ctx, ownerID)
	if err != nil {
		return "", "", err
	}

	v.logger.Info(ctx, "encryption key rotated", "owner", ownerID)
	return oldKey, newKey, nil
}
