package model

import "time"

// Reservation status values. A reservation starts ACTIVE and can only
// transition to CANCELED (by its creator or an admin) or BLOCKED (by
// an admin). Both are terminal.
const (
	StatusActive   = "ACTIVE"
	StatusCanceled = "CANCELED"
	StatusBlocked  = "BLOCKED"
)

// Reservation records a booking of one canonical time slot of a sport
// facility. A request spanning several slots is persisted as several
// independent rows carrying the same participant list. Times are
// minute-precision and timezone-naive (stored as local facility time).
//
// Fields:
//  ID           – primary key identifier.
//  SportID      – sport (resource) being reserved.
//  Creator      – username of the reservation creator.
//  StartTime    – slot start (inclusive).
//  EndTime      – slot end (exclusive).
//  Status       – ACTIVE, CANCELED or BLOCKED.
//  OpenForJoin  – whether additional participants may join.
//  Participants – usernames attached to the reservation, excluding
//                 the creator, in join order.
type Reservation struct {
	ID           uint64    // reservations.id
	SportID      uint64    // reservations.sport_id
	Creator      string    // reservations.creator
	StartTime    time.Time // reservations.start_time
	EndTime      time.Time // reservations.end_time
	Status       string    // reservations.status
	OpenForJoin  bool      // reservations.open_for_join
	Participants []string  // reservation_participants.username, ordered
}

// HasParticipant reports whether the username is attached to the
// reservation as a non-creator participant.
func (r Reservation) HasParticipant(username string) bool {
	for _, p := range r.Participants {
		if p == username {
			return true
		}
	}
	return false
}
