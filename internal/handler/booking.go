package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/queue"
	"github.com/devanchor/studio-booking/internal/repository"
	queue_publisher "github.com/devanchor/studio-booking/internal/service"
	"github.com/devanchor/studio-booking/internal/utils"
)

// BookingHandler serves slot reservation and the caller's booking list.
type BookingHandler struct {
	Cfg      config.Config
	Bookings *repository.BookingRepo

	// Publish emits the confirmation event after a reservation commits.
	// Injectable so tests do not need a broker; failures are logged, never
	// surfaced, since the booking itself is already durable.
	Publish func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

func NewBookingHandler(cfg config.Config, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{
		Cfg:      cfg,
		Bookings: bookings,
		Publish:  queue_publisher.PublishBookingConfirmed,
	}
}

type bookRequest struct {
	ClassID     string `json:"class_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}

type bookingResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	ClassDate   string `json:"class_date"`
	ClassTime   string `json:"class_time"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Status      string `json:"status"`
	Timezone    string `json:"timezone"`
}

// Book reserves one slot of a class for the authenticated client. The
// capacity check, the booking deadline and the email match are all enforced
// inside a single reservation transaction.
func (h *BookingHandler) Book(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.ClassID == "" || req.ClientName == "" || req.ClientEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	tz := c.QueryParam("timezone")
	if tz == "" {
		tz = h.Cfg.ReferenceTZ
	}
	if _, err := utils.ToDisplay(time.Now(), tz); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidTimezone)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	booking, class, err := h.Bookings.Reserve(ctx, id.ID, id.Email, req.ClassID, req.ClientEmail)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		case errors.Is(err, repository.ErrDeadlinePassed):
			return echo.NewHTTPError(http.StatusBadRequest, msgDeadlinePassed)
		case errors.Is(err, repository.ErrClassFull):
			return echo.NewHTTPError(http.StatusBadRequest, msgNoSlots)
		case errors.Is(err, repository.ErrEmailMismatch):
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
		case errors.Is(err, repository.ErrDuplicateBooking):
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}

	if h.Publish != nil {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		ev := queue.BookingConfirmedEvent{
			BookingID:   booking.ID,
			UserID:      id.ID,
			UserEmail:   id.Email,
			ClassID:     class.ID,
			ClassName:   class.Name,
			StartsAt:    class.Schedule.UTC().Format(time.RFC3339),
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(pubCtx, ev); err != nil {
			log.Printf("booking %s confirmed but event publish failed: %v", booking.ID, err)
		}
	}

	local, err := utils.ToDisplay(class.Schedule, tz)
	if err != nil {
		return err
	}
	date, tod := utils.SplitDateTime(local)
	return c.JSON(http.StatusCreated, bookingResponse{
		ID:          booking.ID,
		ClassID:     class.ID,
		ClassName:   class.Name,
		ClassDate:   date,
		ClassTime:   tod,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Status:      booking.Status,
		Timezone:    tz,
	})
}

// ListMine returns the caller's active bookings with class schedules rendered
// in ?timezone= (default: the studio timezone).
func (h *BookingHandler) ListMine(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}
	tz := c.QueryParam("timezone")
	if tz == "" {
		tz = h.Cfg.ReferenceTZ
	}
	if _, err := utils.ToDisplay(time.Now(), tz); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidTimezone)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	details, err := h.Bookings.ListByUser(ctx, id.ID)
	if err != nil {
		return err
	}
	out := make([]bookingResponse, 0, len(details))
	for _, d := range details {
		local, err := utils.ToDisplay(d.Schedule, tz)
		if err != nil {
			return err
		}
		date, tod := utils.SplitDateTime(local)
		out = append(out, bookingResponse{
			ID:          d.Booking.ID,
			ClassID:     d.Booking.ClassID,
			ClassName:   d.ClassName,
			ClassDate:   date,
			ClassTime:   tod,
			ClientName:  id.Username,
			ClientEmail: id.Email,
			Status:      d.Booking.Status,
			Timezone:    tz,
		})
	}
	return c.JSON(http.StatusOK, out)
}
