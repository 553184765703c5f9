package models

import "time"

// HealthLog is one uploaded ciphertext. The payload is opaque to the server
// and lives either inline (EncryptedPayload) or in object storage under
// PayloadKey; exactly one of the two is set.
type HealthLog struct {
	ID               string
	UserID           string
	DeviceID         string
	EncryptedPayload *string
	PayloadKey       *string
	CreatedAt        time.Time
}
