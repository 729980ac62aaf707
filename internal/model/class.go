package model

import "time"

// Class is a scheduled studio class published by an instructor. Schedule is
// always a canonical UTC instant; conversion to a display timezone happens
// on read.
//
// Fields:
//
//	ID           – UUID primary key.
//	Name         – e.g. "Yoga", "Zumba", "HIIT".
//	InstructorID – the publishing user.
//	Schedule     – UTC start instant.
//	Slots        – hard capacity, at least 1.
//	Status       – active or inactive.
type Class struct {
	ID           string
	Name         string
	InstructorID string
	Schedule     time.Time
	Slots        int
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Booking reserves one capacity unit of a class for a user. Only bookings
// with status "active" count against Class.Slots. The (user_id, class_id)
// pair is unique at the storage layer irrespective of status.
type Booking struct {
	ID        string
	UserID    string
	ClassID   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
