package booking

import (
	"context"
	"time"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// Caller identifies the authenticated user an operation runs on behalf
// of. It is threaded explicitly into every engine call; the engine
// never reads identity from ambient state.
type Caller struct {
	Username string
	Role     string
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// ReservationStore abstracts reservation persistence. Read-only
// queries run outside a transaction; every mutating engine operation
// opens a ReservationTx so that all writes of one operation commit or
// roll back together.
type ReservationStore interface {
	Begin(ctx context.Context) (ReservationTx, error)
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, username string) ([]model.Reservation, error)
	CountBySport(ctx context.Context) ([]SportReservationCount, error)
	ExistsActiveBySport(ctx context.Context, sportID uint64) (bool, error)
	DeleteBySport(ctx context.Context, sportID uint64) error
}

// ReservationTx is the transactional slice of the store. Overlap
// queries must lock the matching rows for the duration of the
// transaction so that two concurrent operations cannot both observe
// pre-write state and double-book the same slot or capacity.
type ReservationTx interface {
	Commit() error
	Rollback() error

	// GetForUpdate loads a reservation and locks its row.
	GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error)
	// FindOverlappingBySport returns ACTIVE and BLOCKED reservations of
	// the sport strictly overlapping [start,end), locking them. A
	// non-zero excludeID leaves that reservation out of the result so
	// a time update never conflicts with its own row.
	FindOverlappingBySport(ctx context.Context, sportID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error)
	// FindUserOverlap returns ACTIVE reservations overlapping [start,end)
	// in which the user is the creator or a listed participant.
	FindUserOverlap(ctx context.Context, username string, start, end time.Time) ([]model.Reservation, error)

	InsertBatch(ctx context.Context, reservations []*model.Reservation) error
	SetStatus(ctx context.Context, id uint64, status string) error
	SetStatuses(ctx context.Context, ids []uint64, status string) error
	UpdateTime(ctx context.Context, id uint64, start, end time.Time) error
	UpdateParticipants(ctx context.Context, id uint64, participants []string, openForJoin bool) error
}

// SportStore abstracts sport (resource) persistence.
type SportStore interface {
	GetByID(ctx context.Context, id uint64) (model.Sport, error)
	GetAll(ctx context.Context) ([]model.Sport, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, sport *model.Sport) error
	Update(ctx context.Context, sport model.Sport) error
	Delete(ctx context.Context, id uint64) error
}

// UserDirectory is the external user-lookup boundary. The engine only
// resolves usernames; account management lives elsewhere.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindAllByUsernameIn(ctx context.Context, usernames []string) ([]model.User, error)
}

// RatingStore abstracts reservation rating persistence.
type RatingStore interface {
	Insert(ctx context.Context, rating *model.ReservationRating) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationRating, error)
	Exists(ctx context.Context, reservationID uint64, username string) (bool, error)
	Delete(ctx context.Context, reservationID uint64, username string) error
}

// Notifier is the fire-and-forget notification sink. Implementations
// must never fail the calling operation; the engine invokes it only
// after a successful commit and ignores any delivery problems.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, message string)
}

// SportReservationCount is one row of the per-sport reservation
// statistics.
type SportReservationCount struct {
	Sport string `json:"sport"`
	Count int    `json:"reservationCount"`
}
