package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTracksAvailable is returned when a (possibly filtered) catalog yields no tracks.
	ErrNoTracksAvailable = errors.New("no tracks available")
	// ErrCatalogNotFound indicates the catalog document could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrSessionNotFound is returned when a challenge session is unknown or expired.
	ErrSessionNotFound = errors.New("challenge session not found")
	// ErrSessionCompleted is returned when playing on a finished challenge.
	ErrSessionCompleted = errors.New("challenge already completed")
	// ErrSessionNotCompleted is returned when asking for the result of a running challenge.
	ErrSessionNotCompleted = errors.New("challenge not completed")
	// ErrAlreadyRevealed is returned when answering or revealing after the answer was shown.
	ErrAlreadyRevealed = errors.New("answer already revealed")
	// ErrNotRevealed is returned when skipping ahead before the answer was shown.
	ErrNotRevealed = errors.New("answer not revealed")
	// ErrAlreadyRegistered prevents submitting the same challenge twice.
	ErrAlreadyRegistered = errors.New("challenge already registered")
	// ErrInvalidLimit is returned for out-of-range leaderboard limits.
	ErrInvalidLimit = errors.New("limit must be between 1 and 1000")
)

// ValidationError reports a rejected field of a score submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
