// internal/domain/models/errors.go
package models

import "errors"

// Sentinel errors shared by the pin store implementations. Handlers map
// these to HTTP status codes; nothing here is fatal to the process.
var (
	// ErrNotFound is returned when the requested pin no longer exists.
	ErrNotFound = errors.New("pin not found")

	// ErrForbidden is returned when a caller attempts to edit or delete
	// a pin they do not own. Ownership is enforced at the storage layer
	// with conditional writes, not in the client.
	ErrForbidden = errors.New("not the pin owner")

	// ErrAlreadyVoted is returned when a voter already appears in the
	// pin's voted_by set. Callers may treat it as idempotent success.
	ErrAlreadyVoted = errors.New("already upvoted")

	// ErrSelfVoteForbidden is returned when a pin owner tries to upvote
	// their own pin.
	ErrSelfVoteForbidden = errors.New("cannot upvote own pin")

	// ErrValidation is returned when input fails business rule validation
	// (empty description, unknown classification, non-finite coordinates).
	ErrValidation = errors.New("validation error")
)
