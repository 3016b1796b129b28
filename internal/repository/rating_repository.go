package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// RatingRepo mirrors the 'reservation_ratings' table. One row per
// (reservation, username) pair, enforced by a unique key.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Insert creates a rating row and fills in its generated ID.
func (r *RatingRepo) Insert(ctx context.Context, rating *model.ReservationRating) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservation_ratings
		   (reservation_id, username, hygiene, equipment, atmosphere, comment)
		 VALUES (?,?,?,?,?,?)`,
		rating.ReservationID, rating.Username,
		rating.Hygiene, rating.Equipment, rating.Atmosphere, rating.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rating.ID = uint64(id)
	return nil
}

// ListByReservation returns all ratings of a reservation, oldest first.
func (r *RatingRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationRating, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, reservation_id, username, hygiene, equipment, atmosphere, comment, created_at
		 FROM reservation_ratings WHERE reservation_id=? ORDER BY created_at, id`,
		reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]model.ReservationRating, 0)
	for rows.Next() {
		var rt model.ReservationRating
		if err := rows.Scan(&rt.ID, &rt.ReservationID, &rt.Username,
			&rt.Hygiene, &rt.Equipment, &rt.Atmosphere, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

// Exists reports whether the user already rated the reservation.
func (r *RatingRepo) Exists(ctx context.Context, reservationID uint64, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM reservation_ratings WHERE reservation_id=? AND username=?)",
		reservationID, username).Scan(&exists)
	return exists, err
}

// Delete removes the user's rating of a reservation.
func (r *RatingRepo) Delete(ctx context.Context, reservationID uint64, username string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM reservation_ratings WHERE reservation_id=? AND username=?",
		reservationID, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrRatingNotFound
	}
	return nil
}
