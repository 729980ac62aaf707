// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation commits. It carries
// enough for downstream consumers to log or notify without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID   string `json:"booking_id"`
	UserID      string `json:"user_id"`
	UserEmail   string `json:"user_email"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	StartsAt    string `json:"starts_at"`
	ConfirmedAt string `json:"confirmed_at"`
}
