package booking

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// In-memory store doubles. Transactions hold one big lock from Begin
// to Commit/Rollback, which mirrors the row-locking the SQL layer gets
// from SELECT ... FOR UPDATE: two concurrent operations can never both
// observe pre-write state.

type memReservations struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
	sports *memSports
}

func newMemReservations(sports *memSports) *memReservations {
	return &memReservations{rows: map[uint64]*model.Reservation{}, sports: sports}
}

func copyReservation(r *model.Reservation) model.Reservation {
	out := *r
	out.Participants = append([]string(nil), r.Participants...)
	return out
}

func (s *memReservations) Begin(ctx context.Context) (ReservationTx, error) {
	s.mu.Lock()
	return &memTx{s: s}, nil
}

func (s *memReservations) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return model.Reservation{}, ErrReservationNotFound
	}
	return copyReservation(r), nil
}

func (s *memReservations) ListAll(ctx context.Context) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, copyReservation(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memReservations) ListByUser(ctx context.Context, username string) ([]model.Reservation, error) {
	all, _ := s.ListAll(ctx)
	out := make([]model.Reservation, 0)
	for _, r := range all {
		if r.Creator == username || r.HasParticipant(username) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memReservations) CountBySport(ctx context.Context) ([]SportReservationCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, r := range s.rows {
		if sp, err := s.sports.get(r.SportID); err == nil {
			counts[sp.Name]++
		}
	}
	out := make([]SportReservationCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, SportReservationCount{Sport: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sport < out[j].Sport })
	return out, nil
}

func (s *memReservations) ExistsActiveBySport(ctx context.Context, sportID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.SportID == sportID && r.Status == model.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *memReservations) DeleteBySport(ctx context.Context, sportID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rows {
		if r.SportID == sportID {
			delete(s.rows, id)
		}
	}
	return nil
}

// seed inserts a row directly, bypassing the engine, for test setup.
func (s *memReservations) seed(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	stored := copyReservation(&r)
	s.rows[r.ID] = &stored
	return r
}

func (s *memReservations) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type memTx struct {
	s    *memReservations
	done bool
}

func (t *memTx) finish() {
	if !t.done {
		t.done = true
		t.s.mu.Unlock()
	}
}

func (t *memTx) Commit() error   { t.finish(); return nil }
func (t *memTx) Rollback() error { t.finish(); return nil }

func (t *memTx) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	r, ok := t.s.rows[id]
	if !ok {
		return model.Reservation{}, ErrReservationNotFound
	}
	return copyReservation(r), nil
}

func overlaps(r *model.Reservation, start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

func (t *memTx) FindOverlappingBySport(ctx context.Context, sportID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for _, r := range t.s.rows {
		if r.SportID != sportID || r.ID == excludeID {
			continue
		}
		if r.Status != model.StatusActive && r.Status != model.StatusBlocked {
			continue
		}
		if overlaps(r, start, end) {
			out = append(out, copyReservation(r))
		}
	}
	return out, nil
}

func (t *memTx) FindUserOverlap(ctx context.Context, username string, start, end time.Time) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for _, r := range t.s.rows {
		if r.Status != model.StatusActive || !overlaps(r, start, end) {
			continue
		}
		if r.Creator == username || r.HasParticipant(username) {
			out = append(out, copyReservation(r))
		}
	}
	return out, nil
}

func (t *memTx) InsertBatch(ctx context.Context, reservations []*model.Reservation) error {
	for _, r := range reservations {
		t.s.nextID++
		r.ID = t.s.nextID
		stored := copyReservation(r)
		t.s.rows[r.ID] = &stored
	}
	return nil
}

func (t *memTx) SetStatus(ctx context.Context, id uint64, status string) error {
	r, ok := t.s.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Status = status
	return nil
}

func (t *memTx) SetStatuses(ctx context.Context, ids []uint64, status string) error {
	for _, id := range ids {
		if err := t.SetStatus(ctx, id, status); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) UpdateTime(ctx context.Context, id uint64, start, end time.Time) error {
	r, ok := t.s.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.StartTime = start
	r.EndTime = end
	return nil
}

func (t *memTx) UpdateParticipants(ctx context.Context, id uint64, participants []string, openForJoin bool) error {
	r, ok := t.s.rows[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Participants = append([]string(nil), participants...)
	r.OpenForJoin = openForJoin
	return nil
}

type memSports struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]model.Sport
}

func newMemSports() *memSports { return &memSports{rows: map[uint64]model.Sport{}} }

func (s *memSports) get(id uint64) (model.Sport, error) {
	sp, ok := s.rows[id]
	if !ok {
		return model.Sport{}, ErrSportNotFound
	}
	return sp, nil
}

func (s *memSports) GetByID(ctx context.Context, id uint64) (model.Sport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *memSports) GetAll(ctx context.Context) ([]model.Sport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Sport, 0, len(s.rows))
	for _, sp := range s.rows {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memSports) ExistsByName(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.rows {
		if sp.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *memSports) Insert(ctx context.Context, sport *model.Sport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sport.ID = s.nextID
	s.rows[sport.ID] = *sport
	return nil
}

func (s *memSports) Update(ctx context.Context, sport model.Sport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[sport.ID]; !ok {
		return ErrSportNotFound
	}
	s.rows[sport.ID] = sport
	return nil
}

func (s *memSports) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return ErrSportNotFound
	}
	delete(s.rows, id)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]model.User
}

func newMemUsers() *memUsers { return &memUsers{rows: map[string]model.User{}} }

// Lookups normalize like the SQL repo: usernames are stored lowercase
// and matched case-insensitively.
func (s *memUsers) FindByUsername(ctx context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *memUsers) FindAllByUsernameIn(ctx context.Context, usernames []string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(usernames))
	for _, name := range usernames {
		if u, ok := s.rows[strings.ToLower(strings.TrimSpace(name))]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memRatings struct {
	mu     sync.Mutex
	nextID uint64
	rows   []model.ReservationRating
}

func newMemRatings() *memRatings { return &memRatings{} }

func (s *memRatings) Insert(ctx context.Context, rating *model.ReservationRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rating.ID = s.nextID
	s.rows = append(s.rows, *rating)
	return nil
}

func (s *memRatings) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReservationRating, 0)
	for _, r := range s.rows {
		if r.ReservationID == reservationID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memRatings) Exists(ctx context.Context, reservationID uint64, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ReservationID == reservationID && r.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memRatings) Delete(ctx context.Context, reservationID uint64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ReservationID == reservationID && r.Username == username {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return ErrRatingNotFound
}

type sentNotification struct {
	Recipients []string
	Message    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, recipients []string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Recipients: append([]string(nil), recipients...), Message: message})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fixture bundles a service over fresh in-memory stores with a frozen
// clock. Monday 2025-05-12 09:00, business hours 08:00-22:00, 1h slots.
type fixture struct {
	reservations *memReservations
	sports       *memSports
	users        *memUsers
	ratings      *memRatings
	notifier     *recordingNotifier
	svc          *Service
	now          time.Time
}

func newFixture() *fixture {
	sports := newMemSports()
	f := &fixture{
		reservations: newMemReservations(sports),
		sports:       sports,
		users:        newMemUsers(),
		ratings:      newMemRatings(),
		notifier:     &recordingNotifier{},
		now:          time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.reservations, f.sports, f.users, f.ratings, f.notifier, ScheduleConfig{
		WorkStart:    "08:00",
		WorkEnd:      "22:00",
		SlotDuration: time.Hour,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addUser(username, role string) Caller {
	f.users.rows[username] = model.User{ID: uint64(len(f.users.rows) + 1), Username: username, Role: role, IsActive: true}
	return Caller{Username: username, Role: role}
}

func (f *fixture) addSport(name string, capacity int) model.Sport {
	sp := model.Sport{Name: name, PlayerCount: &capacity}
	_ = f.sports.Insert(context.Background(), &sp)
	return sp
}

// at builds a time on the fixture's day.
func (f *fixture) at(hour int) time.Time {
	return time.Date(2025, 5, 12, hour, 0, 0, 0, time.UTC)
}
