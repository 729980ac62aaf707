package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadReference("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestToCanonicalAcceptsReferenceOffset(t *testing.T) {
	got, err := ToCanonical("2030-06-01T10:00:00+05:30", kolkata(t), true)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, "2030-06-01T04:30:00Z", got.Format(time.RFC3339))
}

func TestToCanonicalRejectsForeignOffset(t *testing.T) {
	// Same instant, written as UTC: still rejected, clients must submit in
	// the studio timezone.
	_, err := ToCanonical("2030-06-01T04:30:00Z", kolkata(t), true)
	assert.ErrorIs(t, err, ErrWrongOffset)

	_, err = ToCanonical("2030-06-01T10:00:00+02:00", kolkata(t), true)
	assert.ErrorIs(t, err, ErrWrongOffset)
}

func TestToCanonicalRejectsUnparseableInput(t *testing.T) {
	for _, raw := range []string{"", "2030-06-01 10:00:00", "2030-06-01T10:00:00", "yesterday"} {
		_, err := ToCanonical(raw, kolkata(t), true)
		assert.ErrorIs(t, err, ErrBadTimestamp, "input %q", raw)
	}
}

func TestToCanonicalFutureRule(t *testing.T) {
	past := time.Now().In(kolkata(t)).Add(-time.Hour).Format(time.RFC3339)
	_, err := ToCanonical(past, kolkata(t), true)
	assert.ErrorIs(t, err, ErrNotFuture)

	// Past instants are fine when the future rule is off.
	_, err = ToCanonical(past, kolkata(t), false)
	assert.NoError(t, err)
}

func TestToDisplay(t *testing.T) {
	instant := time.Date(2030, 6, 1, 4, 30, 0, 0, time.UTC)

	local, err := ToDisplay(instant, "Asia/Kolkata")
	require.NoError(t, err)
	date, tod := SplitDateTime(local)
	assert.Equal(t, "2030-06-01", date)
	assert.Equal(t, "10:00:00", tod)

	_, err = ToDisplay(instant, "Not/AZone")
	assert.ErrorIs(t, err, ErrUnknownTimezone)
	_, err = ToDisplay(instant, "")
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}
