package api

import "errors"

var (
	// ErrUnauthorized means the server rejected the caller's credentials or
	// access token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSecondFactorRequired means login was rejected only because the
	// account requires a one-time code; the caller should resubmit the same
	// credentials together with the code.
	ErrSecondFactorRequired = errors.New("second factor required")

	// ErrForbidden means the server understood the request but refused it
	// (missing permission, expired link).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is the decoded server error envelope. Message is always
// human-readable: either the server-supplied `error`/`detail` field or the
// operation's generic fallback, so callers can surface it directly.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is maps the envelope onto the package sentinels so callers can use
// errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrSecondFactorRequired:
		return e.Code == otpRequiredCode
	case ErrUnauthorized:
		return e.Status == 401
	case ErrForbidden:
		return e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}
