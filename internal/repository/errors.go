// Package repository defines the data access layer and the sentinel error
// values reused across repositories. Sentinels let handlers translate
// failure scenarios into HTTP statuses without inspecting driver errors:
// lower layers never decide status codes.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist or is not in
// a usable state. Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("resource not found")

// ErrConflict is returned when an insert or update violates a uniqueness
// constraint such as a duplicate email, username or role name. Handlers
// translate this into HTTP 409.
var ErrConflict = errors.New("resource already exists")

// ErrDeadlinePassed is returned when a reservation arrives inside the
// booking lead time before class start. Treated as a business-rule 400.
var ErrDeadlinePassed = errors.New("booking deadline has passed for this class")

// ErrClassFull is returned when all slots of a class are consumed by active
// bookings. Treated as a business-rule 400, not a conflict.
var ErrClassFull = errors.New("no slots available for this class")

// ErrEmailMismatch is returned when the contact email in a booking request
// does not match the authenticated identity's email.
var ErrEmailMismatch = errors.New("client email does not match authenticated user")

// ErrDuplicateBooking is returned when the (user, class) pair already exists
// at the storage layer. This is an expected, recoverable outcome mapped to
// HTTP 409 rather than an internal error.
var ErrDuplicateBooking = errors.New("booking already exists for this class")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
