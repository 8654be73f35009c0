// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the entity exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrBoundary indicates a move past the first/last position. Expected
	// outcome of a user action, not a system error.
	ErrBoundary = errors.New("already at boundary")

	// ErrNotInSequence indicates an integrity violation: the entity exists
	// but its parent's ordered sequence does not list it.
	ErrNotInSequence = errors.New("not in sequence")

	// ErrConflict indicates a concurrent transaction touched the same
	// entities; the caller may retry.
	ErrConflict = errors.New("transaction conflict")
)
