package service

import "errors"

var (
	// ErrNotFound reports that no credential record matched the
	// username or its derived id.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials reports a password digest mismatch.
	ErrInvalidCredentials = errors.New("invalid password")

	// ErrMalformedRecord reports a credential record with no stored
	// password hash.
	ErrMalformedRecord = errors.New("user record is invalid")

	// ErrStoreUnavailable reports that the underlying store rejected
	// the call.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrInvalidRole reports an account-creation request with a role
	// outside the closed set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrUsernameTaken reports an account-creation conflict on the
	// derived id or username.
	ErrUsernameTaken = errors.New("username already taken")
)
