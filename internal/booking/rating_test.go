package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

func (f *fixture) seedPastReservation(sportID uint64) model.Reservation {
	return f.reservations.seed(model.Reservation{
		SportID: sportID, Creator: "alice",
		StartTime: f.at(9).AddDate(0, 0, -1), EndTime: f.at(10).AddDate(0, 0, -1),
		Status: model.StatusActive,
	})
}

func TestRateReservation(t *testing.T) {
	f := newFixture()
	bob := f.addUser("bob", model.RoleUser)
	sport := f.addSport("Tennis", 4)
	past := f.seedPastReservation(sport.ID)

	rating, err := f.svc.RateReservation(context.Background(), bob, past.ID, RatingInput{
		Hygiene: 8, Equipment: 9, Atmosphere: 10, Comment: "clean courts",
	})
	require.NoError(t, err)
	assert.NotZero(t, rating.ID)
	assert.Equal(t, "bob", rating.Username)
	assert.Equal(t, past.ID, rating.ReservationID)

	// one rating per user per reservation
	_, err = f.svc.RateReservation(context.Background(), bob, past.ID, RatingInput{
		Hygiene: 1, Equipment: 1, Atmosphere: 1,
	})
	require.Error(t, err)
	assert.Equal(t, KindAlreadyExists, KindOf(err))
}

func TestRateReservationNotFinished(t *testing.T) {
	f := newFixture()
	bob := f.addUser("bob", model.RoleUser)
	sport := f.addSport("Tennis", 4)
	future := f.reservations.seed(model.Reservation{
		SportID: sport.ID, Creator: "alice", StartTime: f.at(10), EndTime: f.at(11), Status: model.StatusActive,
	})

	_, err := f.svc.RateReservation(context.Background(), bob, future.ID, RatingInput{
		Hygiene: 5, Equipment: 5, Atmosphere: 5,
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "past reservations")
}

func TestRateReservationScoreBounds(t *testing.T) {
	f := newFixture()
	bob := f.addUser("bob", model.RoleUser)
	sport := f.addSport("Tennis", 4)
	past := f.seedPastReservation(sport.ID)

	for _, in := range []RatingInput{
		{Hygiene: 0, Equipment: 5, Atmosphere: 5},
		{Hygiene: 5, Equipment: 11, Atmosphere: 5},
		{Hygiene: 5, Equipment: 5, Atmosphere: -1},
	} {
		_, err := f.svc.RateReservation(context.Background(), bob, past.ID, in)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Contains(t, err.Error(), "between 1 and 10")
	}
}

func TestRatingsForReservation(t *testing.T) {
	f := newFixture()
	bob := f.addUser("bob", model.RoleUser)
	carol := f.addUser("carol", model.RoleUser)
	sport := f.addSport("Tennis", 4)
	past := f.seedPastReservation(sport.ID)

	_, err := f.svc.RateReservation(context.Background(), bob, past.ID, RatingInput{Hygiene: 7, Equipment: 7, Atmosphere: 7})
	require.NoError(t, err)
	_, err = f.svc.RateReservation(context.Background(), carol, past.ID, RatingInput{Hygiene: 3, Equipment: 4, Atmosphere: 5})
	require.NoError(t, err)

	ratings, err := f.svc.RatingsForReservation(context.Background(), past.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, 2)

	_, err = f.svc.RatingsForReservation(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestHasRatedAndDelete(t *testing.T) {
	f := newFixture()
	bob := f.addUser("bob", model.RoleUser)
	sport := f.addSport("Tennis", 4)
	past := f.seedPastReservation(sport.ID)

	rated, err := f.svc.HasRated(context.Background(), bob, past.ID)
	require.NoError(t, err)
	assert.False(t, rated)

	err = f.svc.DeleteRating(context.Background(), bob, past.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.RateReservation(context.Background(), bob, past.ID, RatingInput{Hygiene: 6, Equipment: 6, Atmosphere: 6})
	require.NoError(t, err)

	rated, err = f.svc.HasRated(context.Background(), bob, past.ID)
	require.NoError(t, err)
	assert.True(t, rated)

	require.NoError(t, f.svc.DeleteRating(context.Background(), bob, past.ID))
	rated, _ = f.svc.HasRated(context.Background(), bob, past.ID)
	assert.False(t, rated)
}
