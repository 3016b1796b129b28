package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// RatingInput carries the scores and comment of a reservation rating.
// Scores are integers from 1 to 10.
type RatingInput struct {
	Hygiene    int
	Equipment  int
	Atmosphere int
	Comment    string
}

// RateReservation records the caller's rating of a finished
// reservation. Only reservations whose end time has passed can be
// rated, and each user rates a reservation at most once.
func (s *Service) RateReservation(ctx context.Context, caller Caller, reservationID uint64, in RatingInput) (model.ReservationRating, error) {
	if _, err := s.users.FindByUsername(ctx, caller.Username); err != nil {
		return model.ReservationRating{}, s.mapUserErr(err, caller.Username)
	}
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return model.ReservationRating{}, s.mapReservationErr(err, reservationID)
	}

	if res.EndTime.After(s.now()) {
		return model.ReservationRating{}, newError(KindValidation, "you can only rate your past reservations")
	}
	rated, err := s.ratings.Exists(ctx, reservationID, caller.Username)
	if err != nil {
		return model.ReservationRating{}, fmt.Errorf("check existing rating: %w", err)
	}
	if rated {
		return model.ReservationRating{}, newError(KindAlreadyExists, "you have already rated this reservation")
	}
	if !validScore(in.Hygiene) || !validScore(in.Equipment) || !validScore(in.Atmosphere) {
		return model.ReservationRating{}, newError(KindValidation, "ratings must be between 1 and 10")
	}

	rating := model.ReservationRating{
		ReservationID: reservationID,
		Username:      caller.Username,
		Hygiene:       in.Hygiene,
		Equipment:     in.Equipment,
		Atmosphere:    in.Atmosphere,
		Comment:       in.Comment,
	}
	if err := s.ratings.Insert(ctx, &rating); err != nil {
		return model.ReservationRating{}, fmt.Errorf("insert rating: %w", err)
	}
	return rating, nil
}

// RatingsForReservation lists all ratings of a reservation.
func (s *Service) RatingsForReservation(ctx context.Context, reservationID uint64) ([]model.ReservationRating, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return nil, s.mapReservationErr(err, reservationID)
	}
	return s.ratings.ListByReservation(ctx, reservationID)
}

// HasRated reports whether the caller already rated the reservation.
func (s *Service) HasRated(ctx context.Context, caller Caller, reservationID uint64) (bool, error) {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return false, s.mapReservationErr(err, reservationID)
	}
	return s.ratings.Exists(ctx, reservationID, caller.Username)
}

// DeleteRating removes the caller's own rating of a reservation.
func (s *Service) DeleteRating(ctx context.Context, caller Caller, reservationID uint64) error {
	if _, err := s.reservations.GetByID(ctx, reservationID); err != nil {
		return s.mapReservationErr(err, reservationID)
	}
	if err := s.ratings.Delete(ctx, reservationID, caller.Username); err != nil {
		if errors.Is(err, ErrRatingNotFound) {
			return newError(KindNotFound, "rating not found")
		}
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

func validScore(n int) bool { return n >= 1 && n <= 10 }
