// Package common defines shared constants and sentinel errors used across
// client and server layers of the file-sharing service. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// ErrSecondFactorRequired is returned by login when the account has a
	// second factor enabled and no valid one-time code was supplied.
	ErrSecondFactorRequired = errors.New("second factor required")

	// Link lifecycle errors.
	ErrLinkExpired = errors.New("link has expired")
)
