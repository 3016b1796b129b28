package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

func intPtr(n int) *int { return &n }

func TestCreateSport(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice", model.RoleUser)
	admin := f.addUser("root", model.RoleAdmin)

	_, err := f.svc.CreateSport(context.Background(), user, SportInput{Name: "Tennis"})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.svc.CreateSport(context.Background(), admin, SportInput{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	sport, err := f.svc.CreateSport(context.Background(), admin, SportInput{
		Name: "  Tennis ", Description: "outdoor courts", PlayerCount: intPtr(4),
	})
	require.NoError(t, err)
	assert.NotZero(t, sport.ID)
	assert.Equal(t, "Tennis", sport.Name)
	assert.Equal(t, 4, sport.Capacity())

	_, err = f.svc.CreateSport(context.Background(), admin, SportInput{Name: "Tennis"})
	require.Error(t, err)
	assert.Equal(t, KindAlreadyExists, KindOf(err))
}

func TestUpdateSportRename(t *testing.T) {
	f := newFixture()
	admin := f.addUser("root", model.RoleAdmin)
	sport := f.addSport("Tennis", 4)
	f.addSport("Squash", 2)

	// renaming onto another sport's name is rejected
	_, _, err := f.svc.UpdateSport(context.Background(), admin, sport.ID, SportInput{Name: "Squash"})
	require.Error(t, err)
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	// re-casing the sport's own name is allowed
	updated, advisory, err := f.svc.UpdateSport(context.Background(), admin, sport.ID, SportInput{Name: "TENNIS"})
	require.NoError(t, err)
	assert.Empty(t, advisory)
	assert.Equal(t, "TENNIS", updated.Name)
}

func TestUpdateSportCapacityGuard(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice", model.RoleUser)
	admin := f.addUser("root", model.RoleAdmin)
	sport := f.addSport("Tennis", 4)

	_, err := f.svc.CreateReservation(context.Background(), alice, CreateReservationInput{
		SportID: sport.ID, StartTime: f.at(10), EndTime: f.at(11),
	})
	require.NoError(t, err)

	// the update succeeds but leaves the capacity alone and explains why
	updated, advisory, err := f.svc.UpdateSport(context.Background(), admin, sport.ID, SportInput{
		Name: "Tennis", PlayerCount: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "the number of players cannot be changed due to active reservations", advisory)
	assert.Equal(t, 4, updated.Capacity())

	// once nothing is active the capacity change goes through
	all, _ := f.reservations.ListAll(context.Background())
	require.NoError(t, f.svc.CancelReservation(context.Background(), alice, all[0].ID))

	updated, advisory, err = f.svc.UpdateSport(context.Background(), admin, sport.ID, SportInput{
		Name: "Tennis", PlayerCount: intPtr(2),
	})
	require.NoError(t, err)
	assert.Empty(t, advisory)
	assert.Equal(t, 2, updated.Capacity())
}

func TestDeleteSportCascades(t *testing.T) {
	f := newFixture()
	alice := f.addUser("alice", model.RoleUser)
	admin := f.addUser("root", model.RoleAdmin)
	sport := f.addSport("Tennis", 4)

	_, err := f.svc.CreateReservation(context.Background(), alice, CreateReservationInput{
		SportID: sport.ID, StartTime: f.at(10), EndTime: f.at(12),
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.reservations.count())

	err = f.svc.DeleteSport(context.Background(), alice, sport.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	require.NoError(t, f.svc.DeleteSport(context.Background(), admin, sport.ID))
	assert.Equal(t, 0, f.reservations.count())

	err = f.svc.DeleteSport(context.Background(), admin, sport.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSportStatistics(t *testing.T) {
	f := newFixture()
	user := f.addUser("alice", model.RoleUser)
	admin := f.addUser("root", model.RoleAdmin)
	tennis := f.addSport("Tennis", 4)
	basket := f.addSport("Basketball", 10)

	f.reservations.seed(model.Reservation{SportID: tennis.ID, Creator: "a", StartTime: f.at(10), EndTime: f.at(11), Status: model.StatusActive})
	f.reservations.seed(model.Reservation{SportID: tennis.ID, Creator: "b", StartTime: f.at(12), EndTime: f.at(13), Status: model.StatusCanceled})
	f.reservations.seed(model.Reservation{SportID: basket.ID, Creator: "c", StartTime: f.at(10), EndTime: f.at(11), Status: model.StatusBlocked})

	_, err := f.svc.SportStatistics(context.Background(), user)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	stats, err := f.svc.SportStatistics(context.Background(), admin)
	require.NoError(t, err)
	// counts cover every status, sorted by sport name
	require.Len(t, stats, 2)
	assert.Equal(t, SportReservationCount{Sport: "Basketball", Count: 1}, stats[0])
	assert.Equal(t, SportReservationCount{Sport: "Tennis", Count: 2}, stats[1])
}
