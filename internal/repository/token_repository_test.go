package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanchor/studio-booking/internal/model"
)

const (
	selectTokenForUpdate = "SELECT user_id, expires_at FROM refresh_tokens WHERE token_hash=? AND status=? AND revoked_at IS NULL LIMIT 1 FOR UPDATE"
	revokeToken          = "UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE token_hash=?"
	insertToken          = "INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, status) VALUES (?,?,?,?,?)"
)

func newTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestRotateConsumesAndReplaces(t *testing.T) {
	repo, mock := newTokenRepo(t)
	newExp := time.Now().UTC().Add(7 * 24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTokenForUpdate)).
		WithArgs("old-hash", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().UTC().Add(time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta(revokeToken)).
		WithArgs(model.StatusRevoked, "old-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertToken)).
		WithArgs(sqlmock.AnyArg(), "user-1", "new-hash", newExp, model.StatusActive).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	userID, err := repo.Rotate(context.Background(), "old-hash", "new-hash", newExp)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateRejectsConsumedToken(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTokenForUpdate)).
		WithArgs("spent-hash", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}))
	mock.ExpectRollback()

	_, err := repo.Rotate(context.Background(), "spent-hash", "new-hash", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateRejectsExpiredToken(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectTokenForUpdate)).
		WithArgs("old-hash", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().UTC().Add(-time.Minute)))
	mock.ExpectRollback()

	_, err := repo.Rotate(context.Background(), "old-hash", "new-hash", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevoke(t *testing.T) {
	repo, mock := newTokenRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(model.StatusRevoked, "hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Revoke(context.Background(), "hash-1"))

	// Second revocation matches no rows and must surface as not found.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET status=?, revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(model.StatusRevoked, "hash-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Revoke(context.Background(), "hash-1"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate(t *testing.T) {
	repo, mock := newTokenRepo(t)
	query := regexp.QuoteMeta("SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? AND status=? LIMIT 1")

	mock.ExpectQuery(query).
		WithArgs("live-hash", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("user-1", time.Now().UTC().Add(time.Hour), nil))
	userID, err := repo.Validate(context.Background(), "live-hash")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	mock.ExpectQuery(query).
		WithArgs("expired-hash", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("user-1", time.Now().UTC().Add(-time.Hour), nil))
	_, err = repo.Validate(context.Background(), "expired-hash")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
