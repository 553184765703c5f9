package models

import "time"

// RemoteUser is the identity resolved from the remote session.
type RemoteUser struct {
	ID          string
	Email       string
	AccessToken string
}

// UploadRequest is what the remote store receives for one record: the
// ciphertext and routing metadata, never plaintext.
type UploadRequest struct {
	OwnerRemoteID    string
	EncryptedPayload string
	DeviceID         string
}

// Session is the signed-in state persisted in the secure store.
type Session struct {
	UserID        int64     `json:"id"`
	RemoteID      string    `json:"remote_id"`
	Email         string    `json:"email"`
	EncryptionKey string    `json:"encryptionKey"`
	AccessToken   string    `json:"access_token,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// LocalUser is the local account row kept for offline login.
type LocalUser struct {
	ID           int64
	Email        string
	PasswordHash string
	KeyVerifier  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
