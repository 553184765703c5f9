package models

import "time"

// RevokedToken marks an access token id (jti) as signed out until the token
// would have expired anyway.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
}
