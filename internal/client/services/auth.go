// Package services contains the client application services: encrypted
// record CRUD, the sync engine, and the auth pass-through that keeps the
// local session and offline login data.
package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/client/keyvault"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/repositories/users"
	"github.com/dmitrijs2005/healthlog/internal/client/securestore"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/cryptox"
	"github.com/dmitrijs2005/healthlog/internal/logging"
)

// AuthService signs users in against the remote store and keeps what is
// needed to sign in again offline: the local account row with an argon2
// password hash and the key verifier.
type AuthService struct {
	client        client.Client
	users         users.Repository
	vault         *keyvault.Vault
	store         securestore.Store
	logger        logging.Logger
	remoteTimeout time.Duration
	now           func() time.Time
}

func NewAuthService(c client.Client, u users.Repository, v *keyvault.Vault, s securestore.Store, logger logging.Logger, remoteTimeout time.Duration) *AuthService {
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultRemoteTimeout
	}
	return &AuthService{
		client:        c,
		users:         u,
		vault:         v,
		store:         s,
		logger:        logger.With("module", "auth"),
		remoteTimeout: remoteTimeout,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the remote account and signs in.
func (a *AuthService) Register(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "register"
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.Ef(common.KindInvalidInput, op, "email and password are required")
	}

	rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
	defer cancel()
	if _, err := a.client.SignUp(rctx, email, password); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	return a.Login(ctx, email, password)
}

// Login signs in remotely. When the remote store cannot be reached it falls
// back to the local account: the password is checked against the stored
// hash and the key against the stored verifier. An offline session carries
// no access token, so sync stays unavailable until the next online login.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "login"
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.Ef(common.KindInvalidInput, op, "email and password are required")
	}

	rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
	remote, err := a.client.SignIn(rctx, email, password)
	cancel()

	var sess *models.Session
	switch {
	case err == nil:
		sess, err = a.onlineLogin(ctx, email, password, remote)
	case IsRetryable(err):
		a.logger.Info(ctx, "remote store unreachable, trying offline login", "error", err)
		sess, err = a.offlineLogin(ctx, email, password)
	default:
		return nil, common.E(common.KindNotAuthenticated, op, err)
	}
	if err != nil {
		return nil, err
	}

	if err := a.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return sess, nil
}

func (a *AuthService) onlineLogin(ctx context.Context, email, password string, remote *models.RemoteUser) (*models.Session, error) {
	const op = "login"

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	local := &models.LocalUser{Email: email, PasswordHash: hash}
	id, err := a.users.Upsert(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	key, err := a.ownerKey(ctx, id, password)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	local.KeyVerifier = cryptox.MakeVerifier(key)
	if _, err := a.users.Upsert(ctx, local); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	return &models.Session{
		UserID:        id,
		RemoteID:      remote.ID,
		Email:         email,
		EncryptionKey: key,
		AccessToken:   remote.AccessToken,
		Timestamp:     a.now().UTC(),
	}, nil
}

func (a *AuthService) offlineLogin(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "offline login"

	local, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.Ef(common.KindNotAuthenticated, op, "no local account for %s, sign in online first", email)
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if !cryptox.VerifyPassword(password, local.PasswordHash) {
		return nil, common.Ef(common.KindNotAuthenticated, op, "invalid credentials")
	}

	key, err := a.ownerKey(ctx, local.ID, password)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if local.KeyVerifier != "" &&
		subtle.ConstantTimeCompare([]byte(local.KeyVerifier), []byte(cryptox.MakeVerifier(key))) == 0 {
		return nil, common.Ef(common.KindDecryptionFailed, op, "stored key does not match this account")
	}

	return &models.Session{
		UserID:        local.ID,
		Email:         email,
		EncryptionKey: key,
		Timestamp:     a.now().UTC(),
	}, nil
}

// ownerKey returns the stored key, deriving one from the password the first
// time the owner signs in on this device.
func (a *AuthService) ownerKey(ctx context.Context, ownerID int64, password string) (string, error) {
	owner := strconv.FormatInt(ownerID, 10)
	key, err := a.vault.Get(ctx, owner)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return "", err
	}
	return a.vault.DeriveAndStoreFromPassword(ctx, owner, password)
}

// RotateKey replaces the owner's key and hands the new key to reencrypt.
// When reencrypt fails the old key is put back, so stored records and the
// vault stay readable with the same key. On success the offline verifier
// and the saved session are updated and the new session is returned.
func (a *AuthService) RotateKey(ctx context.Context, sess *models.Session, reencrypt func(ctx context.Context, newKey string) error) (*models.Session, error) {
	const op = "rotate key"
	if sess == nil {
		return nil, common.Ef(common.KindNotAuthenticated, op, "no active session")
	}
	owner := strconv.FormatInt(sess.UserID, 10)

	oldKey, newKey, err := a.vault.Rotate(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	if err := reencrypt(ctx, newKey); err != nil {
		if rerr := a.vault.Store(ctx, owner, oldKey); rerr != nil {
			a.logger.Error(ctx, "failed to restore previous key", "error", rerr)
		}
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	if err := a.users.SetKeyVerifier(ctx, sess.UserID, cryptox.MakeVerifier(newKey)); err != nil {
		// the next online login writes a fresh verifier
		a.logger.Warn(ctx, "failed to update key verifier", "error", err)
	}

	next := *sess
	next.EncryptionKey = newKey
	next.Timestamp = a.now().UTC()
	if err := a.SaveSession(ctx, &next); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return &next, nil
}

// SaveSession persists s as the current session.
func (a *AuthService) SaveSession(ctx context.Context, s *models.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(b)
	return a.store.Set(ctx, common.SessionKey, string(b))
}

// CurrentSession loads the saved session and hands its access token back to
// the client. It returns nil without error when nobody is signed in.
func (a *AuthService) CurrentSession(ctx context.Context) (*models.Session, error) {
	raw, err := a.store.Get(ctx, common.SessionKey)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session failed: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("load session failed: %w", err)
	}
	if s.AccessToken != "" {
		a.client.SetAccessToken(s.AccessToken)
	}
	return &s, nil
}

// Logout signs out remotely on a best-effort basis and always clears the
// local session. Only local failures are returned.
func (a *AuthService) Logout(ctx context.Context) error {
	rctx, cancel := context.WithTimeout(ctx, a.remoteTimeout)
	if err := a.client.SignOut(rctx); err != nil {
		a.logger.Warn(ctx, "remote sign out failed", "error", err)
	}
	cancel()

	a.client.SetAccessToken("")
	if err := a.store.Delete(ctx, common.SessionKey); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *AuthService) Close() error {
	return a.client.Close()
}
