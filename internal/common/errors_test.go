package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := E(KindNotFound, "get health log", errors.New("no row with id 7"))
	assert.Equal(t, "get health log failed: no row with id 7", err.Error())

	err = E(KindOffline, "sync", nil)
	assert.Equal(t, "sync failed: no internet connection available", err.Error())

	err = E(KindInvalidInput, "", errors.New("owner id is empty"))
	assert.Equal(t, "owner id is empty", err.Error())
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("outer: %w", E(KindDecryptionFailed, "decrypt", errors.New("bad tag")))

	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := E(KindEncryptionFailed, "create", cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"classified", E(KindAlreadyInProgress, "sync", nil), KindAlreadyInProgress},
		{"wrapped classified", fmt.Errorf("x: %w", E(KindOffline, "sync", nil)), KindOffline},
		{"bare sentinel", fmt.Errorf("x: %w", ErrNotAuthenticated), KindNotAuthenticated},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
