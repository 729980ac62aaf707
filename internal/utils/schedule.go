package utils

// schedule.go converts between client-supplied local timestamps and the
// canonical UTC instants kept in the database. Class schedules must be
// submitted in the studio's reference timezone; display conversion accepts
// any IANA zone name.

import (
	"errors"
	"time"
)

// Validation failures surfaced to handlers as 400s.
var (
	ErrBadTimestamp    = errors.New("timestamp must be RFC3339 with an explicit offset")
	ErrWrongOffset     = errors.New("timestamp offset must match the studio timezone")
	ErrNotFuture       = errors.New("schedule must be in the future")
	ErrUnknownTimezone = errors.New("invalid or unsupported timezone")
)

// LoadReference resolves the configured studio timezone. Startup fails when
// the name is not in the IANA database.
func LoadReference(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrUnknownTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrUnknownTimezone
	}
	return loc, nil
}

// ToCanonical parses an RFC3339 timestamp and returns the UTC instant.
// Offset-naive input fails the parse. The supplied offset must equal the
// reference zone's offset at that instant: an equivalent instant written in
// another offset is rejected rather than silently converted, forcing clients
// to submit in the studio timezone. With mustBeFuture set, the instant must
// lie strictly after now in the reference zone.
func ToCanonical(raw string, ref *time.Location, mustBeFuture bool) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrBadTimestamp
	}
	_, gotOff := t.Zone()
	_, wantOff := t.In(ref).Zone()
	if gotOff != wantOff {
		return time.Time{}, ErrWrongOffset
	}
	if mustBeFuture && !t.After(time.Now().In(ref)) {
		return time.Time{}, ErrNotFuture
	}
	return t.UTC(), nil
}

// ToDisplay converts a canonical instant into the named timezone. Unknown or
// empty zone names fail validation; there is no silent default here.
func ToDisplay(instant time.Time, tzName string) (time.Time, error) {
	if tzName == "" {
		return time.Time{}, ErrUnknownTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, ErrUnknownTimezone
	}
	return instant.In(loc), nil
}

// SplitDateTime renders an instant as ISO date and time strings, the shape
// clients receive for class schedules.
func SplitDateTime(t time.Time) (string, string) {
	return t.Format("2006-01-02"), t.Format("15:04:05")
}
