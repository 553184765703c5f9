package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthlog/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return email, string(pw), nil
}

// Register creates a remote account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	sess, err := a.auth.Register(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.startSession(sess); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and signs in. The auth service falls back
// to the local account when the remote store is unreachable; such a session
// has no access token, which switches the app to offline mode.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	sess, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.startSession(sess); err != nil {
		return err
	}

	if sess.AccessToken == "" {
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Logged in offline. Sync is unavailable until the next online login.")
		return nil
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the session. Local data and keys stay on the device.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.endSession()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
