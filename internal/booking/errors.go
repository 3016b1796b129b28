// Package booking implements the reservation scheduling engine: slot
// generation, business-hour validation, conflict detection, the
// participant capacity state machine and the orchestration of all
// reservation, sport and rating operations over transactional store
// ports. Handlers translate the error kinds defined here into HTTP
// responses.
package booking

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so that the transport layer can
// map it to a stable response code without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindCapacity
	KindResourceConflict
	KindUserConflict
	KindNotActive
	KindNotOpenForJoin
	KindAlreadyParticipant
	KindNotAParticipant
	KindAlreadyExists
	KindForbidden
)

// Error carries a kind alongside a human-readable message. All
// failures raised by the engine abort the enclosing transaction; there
// is no local recovery or retry.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error returned by the engine.
// Errors that did not originate here report KindUnknown and should be
// treated as internal failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinels returned by store implementations when a lookup misses.
// The engine wraps them into KindNotFound errors with context.
var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSportNotFound       = errors.New("sport not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrRatingNotFound      = errors.New("rating not found")
)
