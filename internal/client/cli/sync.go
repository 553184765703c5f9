package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/services"
	"github.com/dmitrijs2005/healthlog/internal/common"
)

// Sync pushes unsynced entries, retrying with backoff up to
// config.SyncAttempts times. Per-entry failures are listed, not returned.
// When the server rejects the access token the user is asked for the
// password once and the sync runs again on the fresh session.
func (a *App) Sync(ctx context.Context) error {
	sess, _, err := a.journal()
	if err != nil {
		return err
	}

	res, err := a.engine.RetryWithBackoff(ctx, sess.UserID, a.config.SyncAttempts)
	if errors.Is(err, client.ErrUnauthorized) && sess.RemoteID != "" {
		if err := a.reauthenticate(ctx, sess); err != nil {
			return err
		}
		res, err = a.engine.RetryWithBackoff(ctx, sess.UserID, a.config.SyncAttempts)
	}
	if res != nil {
		printSyncResult(a.out, res)
	}
	if errors.Is(err, services.ErrNothingSynced) {
		return nil
	}
	return err
}

// reauthenticate signs sess.Email in again after the access token expired.
func (a *App) reauthenticate(ctx context.Context, sess *models.Session) error {
	fmt.Fprintf(a.out, "Session for %s has expired. Enter password to sign in again.\n", sess.Email)
	pw, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	next, err := a.auth.Login(ctx, sess.Email, string(pw))
	if err != nil {
		return err
	}
	if err := a.startSession(next); err != nil {
		return err
	}
	if next.AccessToken == "" {
		a.setMode(ModeOffline)
		return common.Ef(common.KindOffline, "sync", "signed in offline, sync is unavailable")
	}
	a.setMode(ModeOnline)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	sess, _, err := a.journal()
	if err != nil {
		return err
	}
	st, err := a.engine.GetStatus(ctx, sess.UserID)
	if err != nil {
		return err
	}
	printSyncStatus(a.out, st)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	sess, _, err := a.journal()
	if err != nil {
		return err
	}
	st, err := a.engine.GetStats(ctx, sess.UserID)
	if err != nil {
		return err
	}
	printSyncStats(a.out, st)
	return nil
}

// Rotate replaces the encryption key and re-encrypts every entry with it.
// If re-encryption fails the previous key stays in place.
func (a *App) Rotate(ctx context.Context) error {
	sess, recs, err := a.journal()
	if err != nil {
		return err
	}

	next, err := a.auth.RotateKey(ctx, sess, func(ctx context.Context, newKey string) error {
		return recs.Rekey(ctx, sess.UserID, newKey)
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.session = next
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Encryption key rotated")
	return nil
}
