package auth

import "errors"

var (
	// ErrNotFound covers both accounts that do not exist and accounts that
	// are deactivated; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("auth: not found")

	ErrAlreadyExists = errors.New("auth: already exists")
	ErrInvalidInput  = errors.New("auth: invalid input")
	ErrUnauthorized  = errors.New("auth: unauthorized")

	// ErrTokenDecode indicates a token whose structure or signature could
	// not be decoded. It only surfaces from Subject; Validate reports a
	// plain boolean instead.
	ErrTokenDecode = errors.New("auth: token decode failed")

	// ErrNotRefreshToken is returned when an access token is presented to
	// an operation that requires a refresh token. This is the one kind
	// error surfaced distinctly, because it is a caller usage mistake.
	ErrNotRefreshToken = errors.New("auth: token is not a refresh token")
)
