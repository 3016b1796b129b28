package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// SportRepo mirrors the 'sports' table.
type SportRepo struct{ DB *sql.DB }

func NewSportRepo(db *sql.DB) *SportRepo { return &SportRepo{DB: db} }

// GetByID fetches a sport by id.
func (r *SportRepo) GetByID(ctx context.Context, id uint64) (model.Sport, error) {
	var s model.Sport
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, player_count FROM sports WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Description, &s.PlayerCount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Sport{}, booking.ErrSportNotFound
	}
	return s, err
}

// GetAll lists every sport ordered by name.
func (r *SportRepo) GetAll(ctx context.Context) ([]model.Sport, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, description, player_count FROM sports ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sports := make([]model.Sport, 0)
	for rows.Next() {
		var s model.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PlayerCount); err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

// ExistsByName reports whether a sport with the name exists
// (case-insensitive under the default collation).
func (r *SportRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM sports WHERE name=?)", name).Scan(&exists)
	return exists, err
}

// Insert creates a sport and fills in its generated ID.
func (r *SportRepo) Insert(ctx context.Context, sport *model.Sport) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sports (name, description, player_count) VALUES (?,?,?)",
		sport.Name, sport.Description, sport.PlayerCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sport.ID = uint64(id)
	return nil
}

// Update overwrites the sport row.
func (r *SportRepo) Update(ctx context.Context, sport model.Sport) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sports SET name=?, description=?, player_count=? WHERE id=?",
		sport.Name, sport.Description, sport.PlayerCount, sport.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrSportNotFound
	}
	return nil
}

// Delete removes a sport row.
func (r *SportRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sports WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrSportNotFound
	}
	return nil
}
