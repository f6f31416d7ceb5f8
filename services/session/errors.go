package session

import "errors"

var (
	// ErrNoSession means the token is missing, invalid, or points at a
	// session that no longer exists.
	ErrNoSession = errors.New("no active session")
	// ErrSessionExpired means the backend no longer recognizes the session.
	ErrSessionExpired = errors.New("session expired")
)
