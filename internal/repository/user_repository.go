package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/devanchor/studio-booking/internal/model"
	"github.com/devanchor/studio-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,username,password_hash,status,created_at,updated_at"

// Create inserts a user with a fresh UUID and returns the stored row.
// Duplicate email or username maps to ErrConflict.
func (r *UserRepo) Create(ctx context.Context, email, username, password string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, username, password_hash, status) VALUES (?,?,?,?,?)",
		id, email, username, hash, model.UserActive)
	if err != nil {
		if isDuplicateKey(err) {
			return model.User{}, ErrConflict
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// ActiveRoleNames returns the names of the user's active role assignments.
// Used by the authorization gate on every protected request.
func (r *UserRepo) ActiveRoleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT ro.name FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id=? AND ur.status=? AND ro.status=?`,
		userID, model.StatusActive, model.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// RolesOf returns the full role rows assigned to a user, for responses.
func (r *UserRepo) RolesOf(ctx context.Context, userID string) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT ro.id, ro.name, ro.description, ro.status, ro.created_at, ro.updated_at
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id=? AND ur.status=?
		 ORDER BY ro.name`,
		userID, model.StatusActive)
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

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserPatch carries optional profile updates; nil fields are left untouched.
type UserPatch struct {
	Email    *string
	Username *string
	Password *string
	Status   *string
}

// Update applies the non-nil patch fields to a user. Returns ErrNotFound
// when the user does not exist and ErrConflict on duplicate email/username.
func (r *UserRepo) Update(ctx context.Context, id string, patch UserPatch, cost int) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.Email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.Username != nil {
		sets = append(sets, "username=?")
		args = append(args, strings.TrimSpace(*patch.Username))
	}
	if patch.Password != nil {
		hash, err := utils.HashPassword(*patch.Password, cost)
		if err != nil {
			return err
		}
		sets = append(sets, "password_hash=?")
		args = append(args, hash)
	}
	if patch.Status != nil {
		sets = append(sets, "status=?")
		args = append(args, *patch.Status)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either missing or a no-op update; distinguish with a lookup.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AssignRole creates an active (user, role) association. An existing pair is
// left as-is; the uniqueness constraint makes the operation idempotent.
func (r *UserRepo) AssignRole(ctx context.Context, userID, roleID, description string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (id, user_id, role_id, description, status) VALUES (?,?,?,?,?)",
		uuid.NewString(), userID, roleID, description, model.StatusActive)
	if isDuplicateKey(err) {
		return nil
	}
	return err
}
