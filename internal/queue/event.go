// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into notification rows.
package queue

// ReservationActivityEvent is published after a reservation-changing
// operation commits. It carries the recipients and the rendered message
// so the consumer can store notifications without querying the primary
// database.
type ReservationActivityEvent struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
	OccurredAt string   `json:"occurred_at"`
}
