// Package common contains shared constants, the error taxonomy and small
// helpers used across the healthlog client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Secure store slot names. The owner id is appended to the prefixes.
const (
	EncryptionKeyPrefix  = "user_encryption_key_"
	EncryptionSaltPrefix = "encryption_salt_"
	SessionKey           = "user_session"
)
