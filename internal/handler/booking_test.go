package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanchor/studio-booking/internal/auth"
	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/model"
	"github.com/devanchor/studio-booking/internal/queue"
	"github.com/devanchor/studio-booking/internal/repository"
)

func bookingFixture(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{ReferenceTZ: "Asia/Kolkata"}
	h := NewBookingHandler(cfg, repository.NewBookingRepo(db))
	h.Publish = nil // individual tests install a recorder when needed
	return h, mock
}

func bookContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/book", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	auth.Bind(c, auth.Identity{ID: "user-1", Email: "a@b.com", Username: "alice", Roles: []string{"client"}})
	return c, rec
}

func TestBookSuccessPublishesEvent(t *testing.T) {
	h, mock := bookingFixture(t)
	schedule := time.Date(2030, 6, 1, 4, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,name,instructor_id,schedule,slots,status FROM classes WHERE id=? FOR UPDATE")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "instructor_id", "schedule", "slots", "status"}).
			AddRow("class-1", "Morning Yoga", "instr-1", schedule, 10, model.StatusActive))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM bookings WHERE class_id=? AND status=?")).
		WithArgs("class-1", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO bookings (id, user_id, class_id, status) VALUES (?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "user-1", "class-1", model.StatusActive).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var published *queue.BookingConfirmedEvent
	h.Publish = func(ctx context.Context, ev queue.BookingConfirmedEvent) error {
		published = &ev
		return nil
	}

	c, rec := bookContext(t, `{"class_id":"class-1","client_name":"Alice","client_email":"a@b.com"}`)
	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "class-1", resp["class_id"])
	assert.Equal(t, "Morning Yoga", resp["class_name"])
	// 04:30 UTC renders as 10:00 in the studio timezone.
	assert.Equal(t, "2030-06-01", resp["class_date"])
	assert.Equal(t, "10:00:00", resp["class_time"])
	assert.Equal(t, "Asia/Kolkata", resp["timezone"])
	assert.Equal(t, model.StatusActive, resp["status"])

	require.NotNil(t, published)
	assert.Equal(t, "class-1", published.ClassID)
	assert.Equal(t, "a@b.com", published.UserEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookClassFull(t *testing.T) {
	h, mock := bookingFixture(t)
	schedule := time.Now().UTC().Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id,name,instructor_id,schedule,slots,status FROM classes WHERE id=? FOR UPDATE")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "instructor_id", "schedule", "slots", "status"}).
			AddRow("class-1", "Morning Yoga", "instr-1", schedule, 1, model.StatusActive))
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM bookings WHERE class_id=? AND status=?")).
		WithArgs("class-1", model.StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	mock.ExpectRollback()

	c, _ := bookContext(t, `{"class_id":"class-1","client_name":"Alice","client_email":"a@b.com"}`)
	err := h.Book(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, msgNoSlots, he.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookUnknownTimezone(t *testing.T) {
	h, _ := bookingFixture(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/book?timezone=Not/AZone",
		strings.NewReader(`{"class_id":"class-1","client_name":"Alice","client_email":"a@b.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	auth.Bind(c, auth.Identity{ID: "user-1", Email: "a@b.com", Username: "alice"})

	err := h.Book(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, msgInvalidTimezone, he.Message)
}

func TestBookMissingFields(t *testing.T) {
	h, _ := bookingFixture(t)

	c, _ := bookContext(t, `{"class_id":"class-1"}`)
	err := h.Book(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, msgInvalidRequest, he.Message)
}
