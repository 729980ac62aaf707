package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/devanchor/studio-booking/internal/model"
)

type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

// Create inserts a class published by the given instructor. Schedule must
// already be a canonical UTC instant.
func (r *ClassRepo) Create(ctx context.Context, name, instructorID string, schedule time.Time, slots int) (model.Class, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO classes (id, name, instructor_id, schedule, slots, status) VALUES (?,?,?,?,?,?)",
		id, name, instructorID, schedule, slots, model.StatusActive)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Class{}, ErrConflict
		}
		return model.Class{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a class by id.
func (r *ClassRepo) GetByID(ctx context.Context, id string) (model.Class, error) {
	var cl model.Class
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,instructor_id,schedule,slots,status,created_at,updated_at FROM classes WHERE id=? LIMIT 1",
		id).Scan(&cl.ID, &cl.Name, &cl.InstructorID, &cl.Schedule, &cl.Slots, &cl.Status, &cl.CreatedAt, &cl.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Class{}, ErrNotFound
	}
	return cl, err
}

// ClassListing is a class row joined with its instructor's username and the
// number of slots still free. Listing queries compute availability eagerly
// instead of loading booking relations per row.
type ClassListing struct {
	Class          model.Class
	Instructor     string
	AvailableSlots int
}

// List returns one page of classes ordered by schedule, plus the total row
// count for pagination. Availability is slots minus active bookings,
// computed in the same query.
func (r *ClassRepo) List(ctx context.Context, page, limit int) ([]ClassListing, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM classes").Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	const q = `SELECT c.id, c.name, c.instructor_id, c.schedule, c.slots, c.status, c.created_at, c.updated_at,
	                  u.username,
	                  (SELECT COUNT(*) FROM bookings b WHERE b.class_id = c.id AND b.status = ?) AS booked
	           FROM classes c
	           JOIN users u ON u.id = c.instructor_id
	           ORDER BY c.schedule
	           LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, q, model.StatusActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := make([]ClassListing, 0, limit)
	for rows.Next() {
		var (
			l      ClassListing
			booked int
		)
		if err := rows.Scan(
			&l.Class.ID, &l.Class.Name, &l.Class.InstructorID, &l.Class.Schedule,
			&l.Class.Slots, &l.Class.Status, &l.Class.CreatedAt, &l.Class.UpdatedAt,
			&l.Instructor, &booked,
		); err != nil {
			return nil, 0, err
		}
		l.AvailableSlots = l.Class.Slots - booked
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
