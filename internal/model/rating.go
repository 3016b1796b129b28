package model

import "time"

// ReservationRating is a user's review of a finished reservation as
// stored in the `reservation_ratings` table. A user may rate a given
// reservation at most once; scores are integers from 1 to 10.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation being rated.
//  Username      – author of the rating.
//  Hygiene       – hygiene score (1..10).
//  Equipment     – equipment score (1..10).
//  Atmosphere    – atmosphere score (1..10).
//  Comment       – optional free-text comment.
//  CreatedAt     – timestamp of creation.
type ReservationRating struct {
	ID            uint64    // reservation_ratings.id
	ReservationID uint64    // reservation_ratings.reservation_id
	Username      string    // reservation_ratings.username
	Hygiene       int       // reservation_ratings.hygiene
	Equipment     int       // reservation_ratings.equipment
	Atmosphere    int       // reservation_ratings.atmosphere
	Comment       string    // reservation_ratings.comment
	CreatedAt     time.Time // reservation_ratings.created_at
}
