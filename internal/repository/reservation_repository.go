package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and their
// participant lists. Reservations live in the reservations table;
// the usernames attached to a reservation are stored in the
// reservation_participants table, ordered by a position column.
// All timestamp columns hold naive local facility time.
//
// The repo implements booking.ReservationStore; Begin opens a
// transaction whose overlap queries lock the matching rows with
// SELECT ... FOR UPDATE. Under InnoDB the next-key locks taken on the
// (sport_id, start_time, end_time) index also keep concurrent
// transactions from inserting new rows into the scanned range, which
// gives the engine the per-sport/per-range mutual exclusion it needs.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, sport_id, creator, start_time, end_time, status, open_for_join`

// Begin opens a transaction for one engine operation. The caller must
// commit or roll back.
func (r *ReservationRepo) Begin(ctx context.Context) (booking.ReservationTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &reservationTx{tx: tx}, nil
}

// GetByID loads a single reservation with its participant list.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.Reservation{}, err
	}
	if err := loadParticipants(ctx, r.db, []*model.Reservation{&res}); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// ListAll returns every reservation ordered by start time.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_time, id`
	return queryReservations(ctx, r.db, q)
}

// ListByUser returns reservations the user created or participates in,
// newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, username string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r
	           WHERE r.creator = ?
	              OR EXISTS (SELECT 1 FROM reservation_participants p
	                         WHERE p.reservation_id = r.id AND p.username = ?)
	           ORDER BY r.start_time DESC, r.id DESC`
	return queryReservations(ctx, r.db, q, username, username)
}

// CountBySport returns reservation counts grouped by sport name,
// ordered by name.
func (r *ReservationRepo) CountBySport(ctx context.Context) ([]booking.SportReservationCount, error) {
	const q = `SELECT s.name, COUNT(r.id)
	           FROM reservations r
	           JOIN sports s ON s.id = r.sport_id
	           GROUP BY s.name
	           ORDER BY s.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	stats := make([]booking.SportReservationCount, 0)
	for rows.Next() {
		var c booking.SportReservationCount
		if err := rows.Scan(&c.Sport, &c.Count); err != nil {
			return nil, err
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

// ExistsActiveBySport reports whether the sport has any ACTIVE
// reservation. Used to guard capacity edits.
func (r *ReservationRepo) ExistsActiveBySport(ctx context.Context, sportID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM reservations WHERE sport_id = ? AND status = 'ACTIVE')`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, sportID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteBySport removes all reservations of a sport. Participant and
// rating rows cascade via foreign keys.
func (r *ReservationRepo) DeleteBySport(ctx context.Context, sportID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE sport_id = ?`, sportID)
	return err
}

// reservationTx wraps *sql.Tx with the queries the engine runs inside
// one operation.
type reservationTx struct {
	tx *sql.Tx
}

func (t *reservationTx) Commit() error   { return t.tx.Commit() }
func (t *reservationTx) Rollback() error { return t.tx.Rollback() }

// GetForUpdate loads a reservation and locks its row for the rest of
// the transaction.
func (t *reservationTx) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	res, err := scanReservation(t.tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return model.Reservation{}, err
	}
	if err := loadParticipants(ctx, t.tx, []*model.Reservation{&res}); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// FindOverlappingBySport returns ACTIVE/BLOCKED reservations of the
// sport strictly overlapping [start,end), locking them. excludeID,
// when non-zero, leaves that row out so an in-place time update does
// not conflict with itself.
func (t *reservationTx) FindOverlappingBySport(ctx context.Context, sportID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
	      WHERE sport_id = ?
	        AND status IN ('ACTIVE','BLOCKED')
	        AND start_time < ? AND end_time > ?`
	args := []any{sportID, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` FOR UPDATE`
	return queryReservations(ctx, t.tx, q, args...)
}

// FindUserOverlap returns ACTIVE reservations overlapping [start,end)
// in which the user appears as creator or participant.
func (t *reservationTx) FindUserOverlap(ctx context.Context, username string, start, end time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r
	           WHERE r.status = 'ACTIVE'
	             AND r.start_time < ? AND r.end_time > ?
	             AND (r.creator = ?
	                  OR EXISTS (SELECT 1 FROM reservation_participants p
	                             WHERE p.reservation_id = r.id AND p.username = ?))
	           FOR UPDATE`
	return queryReservations(ctx, t.tx, q, end, start, username, username)
}

// InsertBatch inserts the reservations and their participant lists,
// populating the generated IDs on the passed records.
func (t *reservationTx) InsertBatch(ctx context.Context, reservations []*model.Reservation) error {
	const q = `INSERT INTO reservations (sport_id, creator, start_time, end_time, status, open_for_join)
	           VALUES (?, ?, ?, ?, ?, ?)`
	for _, res := range reservations {
		result, err := t.tx.ExecContext(ctx, q,
			res.SportID, res.Creator, res.StartTime, res.EndTime, res.Status, res.OpenForJoin)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
		if err := insertParticipants(ctx, t.tx, res.ID, res.Participants); err != nil {
			return err
		}
	}
	return nil
}

// SetStatus updates the status of a single reservation.
func (t *reservationTx) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// SetStatuses updates the status of several reservations in one
// statement.
func (t *reservationTx) SetStatuses(ctx context.Context, ids []uint64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(ids))
	args := []any{status}
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `UPDATE reservations SET status = ? WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := t.tx.ExecContext(ctx, q, args...)
	return err
}

// UpdateTime overwrites the start and end of a reservation in place.
func (t *reservationTx) UpdateTime(ctx context.Context, id uint64, start, end time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET start_time = ?, end_time = ? WHERE id = ?`, start, end, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrReservationNotFound
	}
	return nil
}

// UpdateParticipants replaces the participant list and open flag of a
// reservation. The list is rewritten wholesale; join order is kept in
// the position column.
func (t *reservationTx) UpdateParticipants(ctx context.Context, id uint64, participants []string, openForJoin bool) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET open_for_join = ? WHERE id = ?`, openForJoin, id); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM reservation_participants WHERE reservation_id = ?`, id); err != nil {
		return err
	}
	return insertParticipants(ctx, t.tx, id, participants)
}

// queryer lets the scan helpers run against either *sql.DB or *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryReservations(ctx context.Context, q queryer, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	refs := make([]*model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.SportID, &res.Creator,
			&res.StartTime, &res.EndTime, &res.Status, &res.OpenForJoin); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		refs = append(refs, &out[i])
	}
	if err := loadParticipants(ctx, q, refs); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.SportID, &res.Creator,
		&res.StartTime, &res.EndTime, &res.Status, &res.OpenForJoin)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, booking.ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// loadParticipants fills the Participants slice of every passed
// reservation with one IN query, preserving join order.
func loadParticipants(ctx context.Context, q queryer, reservations []*model.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Reservation, len(reservations))
	placeholders := make([]string, 0, len(reservations))
	args := make([]any, 0, len(reservations))
	for _, res := range reservations {
		res.Participants = nil
		index[res.ID] = res
		placeholders = append(placeholders, "?")
		args = append(args, res.ID)
	}
	query := `SELECT reservation_id, username FROM reservation_participants
	          WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY reservation_id, position`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var username string
		if err := rows.Scan(&id, &username); err != nil {
			return err
		}
		if res, ok := index[id]; ok {
			res.Participants = append(res.Participants, username)
		}
	}
	return rows.Err()
}

// execer lets insertParticipants run inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertParticipants(ctx context.Context, e execer, reservationID uint64, participants []string) error {
	if len(participants) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_participants (reservation_id, username, position) VALUES `
	args := make([]any, 0, len(participants)*3)
	for i, username := range participants {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, reservationID, username, i)
	}
	_, err := e.ExecContext(ctx, query, args...)
	return err
}
