package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/sport-facility-reservation/internal/model"
)

// NotificationRepo mirrors the 'notifications' table. Rows are written
// by the queue consumer and read back by the notifications endpoints.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Insert creates a notification row for one recipient.
func (r *NotificationRepo) Insert(ctx context.Context, username, message string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (username, message) VALUES (?,?)",
		username, message)
	return err
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, username string) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, username, message, seen, created_at
		 FROM notifications WHERE username=? ORDER BY created_at DESC, id DESC`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Username, &n.Message, &n.Seen, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkSeen flags all of the user's notifications as seen.
func (r *NotificationRepo) MarkSeen(ctx context.Context, username string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET seen=1 WHERE username=? AND seen=0", username)
	return err
}
