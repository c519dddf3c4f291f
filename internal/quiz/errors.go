package quiz

import "errors"

var (
	// ErrStorageUnavailable wraps persistence failures. The current
	// interaction must be aborted; no counters were changed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidSession marks a stale or malformed submission: no active
	// session, a finished session, or a word id that does not match the
	// outstanding question. The session is discarded.
	ErrInvalidSession = errors.New("invalid session state")

	// ErrNoWords is returned when a session is started over an empty word set.
	ErrNoWords = errors.New("no words to test")
)
