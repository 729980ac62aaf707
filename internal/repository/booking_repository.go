package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/devanchor/studio-booking/internal/model"
)

// LeadTime is the minimum interval before class start during which new
// bookings are refused.
const LeadTime = 30 * time.Minute

// BookingRepo implements the booking capacity engine. Reserve runs entirely
// inside one transaction and serializes on the class row with FOR UPDATE:
// a plain count-then-insert under read-committed isolation would let two
// concurrent requests both pass the capacity check when one slot remains.
// Locking the class row makes capacity accounting linearizable per class
// while reservations for different classes proceed in parallel.
type BookingRepo struct {
	db  *sql.DB
	now func() time.Time // swapped out in tests
}

func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, now: time.Now}
}

// Reserve books one slot of a class for a user. Within a single atomic unit
// of work it verifies, in order: the class exists and is active, the booking
// deadline has not passed, capacity remains, and the claimed contact email
// matches the authenticated identity. The storage-layer uniqueness of
// (user_id, class_id) turns a racing duplicate insert into
// ErrDuplicateBooking.
func (r *BookingRepo) Reserve(ctx context.Context, userID, userEmail, classID, claimedEmail string) (model.Booking, model.Class, error) {
	var (
		booking model.Booking
		class   model.Class
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return booking, class, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the class row: this is the per-class mutual exclusion point.
	err = tx.QueryRowContext(ctx,
		"SELECT id,name,instructor_id,schedule,slots,status FROM classes WHERE id=? FOR UPDATE",
		classID).Scan(&class.ID, &class.Name, &class.InstructorID, &class.Schedule, &class.Slots, &class.Status)
	if err == sql.ErrNoRows {
		return booking, class, ErrNotFound
	}
	if err != nil {
		return booking, class, err
	}
	if class.Status != model.StatusActive {
		return booking, class, ErrNotFound
	}

	if class.Schedule.Sub(r.now().UTC()) <= LeadTime {
		return booking, class, ErrDeadlinePassed
	}

	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE class_id=? AND status=?",
		classID, model.StatusActive).Scan(&active); err != nil {
		return booking, class, err
	}
	if active >= class.Slots {
		return booking, class, ErrClassFull
	}

	if claimedEmail != userEmail {
		return booking, class, ErrEmailMismatch
	}

	booking = model.Booking{
		ID:      uuid.NewString(),
		UserID:  userID,
		ClassID: classID,
		Status:  model.StatusActive,
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (id, user_id, class_id, status) VALUES (?,?,?,?)",
		booking.ID, booking.UserID, booking.ClassID, booking.Status); err != nil {
		if isDuplicateKey(err) {
			return model.Booking{}, class, ErrDuplicateBooking
		}
		return model.Booking{}, class, err
	}

	if err := tx.Commit(); err != nil {
		return model.Booking{}, class, err
	}
	committed = true
	return booking, class, nil
}

// Cancel releases a user's active booking, freeing its capacity unit. It
// takes the same class-row lock as Reserve so the active-booking count never
// exceeds slots at any observable instant. The (user_id, class_id) pair
// stays in place, so a later rebooking attempt surfaces as a duplicate.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var classID string
	err = tx.QueryRowContext(ctx,
		"SELECT class_id FROM bookings WHERE id=? AND user_id=? AND status=? LIMIT 1",
		bookingID, userID, model.StatusActive).Scan(&classID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"SELECT id FROM classes WHERE id=? FOR UPDATE", classID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET status=? WHERE id=? AND status=?",
		model.StatusCancelled, bookingID, model.StatusActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// BookingDetail is a booking row joined with its class, as returned to the
// booking owner.
type BookingDetail struct {
	Booking   model.Booking
	ClassName string
	Schedule  time.Time
}

// ListByUser returns the user's active bookings with class name and
// schedule, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.user_id, b.class_id, b.status, b.created_at, b.updated_at,
	                  c.name, c.schedule
	           FROM bookings b
	           JOIN classes c ON c.id = b.class_id
	           WHERE b.user_id=? AND b.status=?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, model.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		if err := rows.Scan(
			&d.Booking.ID, &d.Booking.UserID, &d.Booking.ClassID, &d.Booking.Status,
			&d.Booking.CreatedAt, &d.Booking.UpdatedAt,
			&d.ClassName, &d.Schedule,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
