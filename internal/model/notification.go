package model

import "time"

// Notification is a message delivered to a user about reservation
// activity. Rows are written by the queue consumer, never by request
// handlers, so a broker outage can delay but not fail a booking.
//
// Fields:
//  ID        – primary key identifier.
//  Username  – recipient.
//  Message   – human-readable text.
//  Seen      – whether the user has acknowledged it.
//  CreatedAt – timestamp of creation.
type Notification struct {
	ID        uint64    // notifications.id
	Username  string    // notifications.username
	Message   string    // notifications.message
	Seen      bool      // notifications.seen
	CreatedAt time.Time // notifications.created_at
}
