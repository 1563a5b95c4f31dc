package todo

import "errors"

var (
	// ErrNotFound covers both a nonexistent todo and one owned by another
	// user; the two must stay indistinguishable to callers.
	ErrNotFound = errors.New("todo: not found")

	ErrInvalidInput = errors.New("todo: invalid input")
)
