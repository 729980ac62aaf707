package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/devanchor/studio-booking/internal/model"
)

// TokenRepo persists refresh tokens. Only the SHA-256 hash of a token is
// stored; a row is usable while status is active, revoked_at is null and
// expires_at lies in the future.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row for a user.
func (r *TokenRepo) Store(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, status) VALUES (?,?,?,?,?)",
		uuid.NewString(), userID, tokenHash, exp, model.StatusActive)
	return err
}

// Validate returns the owning user id if a non-revoked, non-expired token
// row exists for the hash; otherwise ErrNotFound.
func (r *TokenRepo) Validate(ctx context.Context, tokenHash string) (string, error) {
	var (
		userID    string
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? AND status=? LIMIT 1",
		tokenHash, model.StatusActive).Scan(&userID, &expiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return "", ErrNotFound
	}
	return userID, nil
}

// Revoke marks a single token as revoked. ErrNotFound when no active row
// matched, so double-revocation is visible to the caller.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		model.StatusRevoked, tokenHash)
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
	return nil
}

// RevokeAllForUser revokes every active token belonging to a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		model.StatusRevoked, userID)
	return err
}

// Rotate consumes a refresh token and records its replacement in one
// transaction, so there is no window where both the old and the new token
// are valid. It returns the owning user id. A token that is unknown,
// expired, revoked or already consumed yields ErrNotFound.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, newExp time.Time) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		userID    string
		expiresAt time.Time
	)
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM refresh_tokens WHERE token_hash=? AND status=? AND revoked_at IS NULL LIMIT 1 FOR UPDATE",
		oldHash, model.StatusActive).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if time.Now().UTC().After(expiresAt) {
		return "", ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE token_hash=?",
		model.StatusRevoked, oldHash); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, status) VALUES (?,?,?,?,?)",
		uuid.NewString(), userID, newHash, newExp, model.StatusActive); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return userID, nil
}
