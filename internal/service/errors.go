package service

import "errors"

// Common service-level errors.
var (
	// ErrInvalidCredentials is returned for every login failure: unknown
	// email and wrong password are deliberately indistinguishable so the
	// API cannot be used to enumerate registered accounts.
	ErrInvalidCredentials = errors.New("unable to login")
)
