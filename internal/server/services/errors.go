// Package services holds the server-side business logic: accounts and
// sessions in UserService, uploaded payloads in HealthLogService.
package services

import "errors"

// ErrAlreadyExists is returned by SignUp for a registered email.
var ErrAlreadyExists = errors.New("user already exists")
