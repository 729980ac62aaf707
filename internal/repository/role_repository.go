package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/devanchor/studio-booking/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

const roleColumns = "id,name,description,status,created_at,updated_at"

// Create inserts a role. Names are trimmed and lowercased before storage;
// a duplicate name maps to ErrConflict.
func (r *RoleRepo) Create(ctx context.Context, name, description string) (model.Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (id, name, description, status) VALUES (?,?,?,?)",
		id, name, description, model.StatusActive)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Role{}, ErrConflict
		}
		return model.Role{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (model.Role, error) {
	return r.get(ctx, "SELECT "+roleColumns+" FROM roles WHERE id=? LIMIT 1", id)
}

// GetByName fetches a role by its lowercase name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	return r.get(ctx, "SELECT "+roleColumns+" FROM roles WHERE name=? LIMIT 1", name)
}

func (r *RoleRepo) get(ctx context.Context, query string, arg any) (model.Role, error) {
	var ro model.Role
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&ro.ID, &ro.Name, &ro.Description, &ro.Status, &ro.CreatedAt, &ro.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return ro, err
}

// List returns roles, optionally filtered by status.
func (r *RoleRepo) List(ctx context.Context, status string) ([]model.Role, error) {
	query := "SELECT " + roleColumns + " FROM roles"
	args := []any{}
	if status != "" {
		query += " WHERE status=?"
		args = append(args, status)
	}
	query += " ORDER BY name"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	roles := make([]model.Role, 0)
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Description, &ro.Status, &ro.CreatedAt, &ro.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, ro)
	}
	return roles, rows.Err()
}

// RolePatch carries optional role updates; nil fields are left untouched.
type RolePatch struct {
	Name        *string
	Description *string
	Status      *string
}

// Update applies the non-nil patch fields to a role.
func (r *RoleRepo) Update(ctx context.Context, id string, patch RolePatch) (model.Role, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*patch.Name)))
	}
	if patch.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *patch.Status)
	}
	if len(sets) > 0 {
		args = append(args, id)
		_, err := r.DB.ExecContext(ctx,
			"UPDATE roles SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
		if err != nil {
			if isDuplicateKey(err) {
				return model.Role{}, ErrConflict
			}
			return model.Role{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a role. A role still referenced by user_roles fails with
// ErrConflict (foreign key restriction, MySQL error 1451).
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM roles WHERE id=?", id)
	if err != nil {
		if strings.Contains(err.Error(), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
