package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/repository"
	"github.com/devanchor/studio-booking/internal/utils"
)

// ClassHandler serves class publishing and the public class listing.
type ClassHandler struct {
	Cfg     config.Config
	Classes *repository.ClassRepo
	RefLoc  *time.Location
}

func NewClassHandler(cfg config.Config, classes *repository.ClassRepo, refLoc *time.Location) *ClassHandler {
	return &ClassHandler{Cfg: cfg, Classes: classes, RefLoc: refLoc}
}

type classCreateRequest struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Slots    int    `json:"slots"`
}

// classResponse renders a class with its schedule split into local date and
// time strings in the requested display timezone.
type classResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Instructor     string `json:"instructor"`
	AvailableSlots int    `json:"available_slots"`
	Status         string `json:"status"`
}

type classPage struct {
	Items      []classResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Create publishes a class. The schedule must be a future RFC3339 timestamp
// carrying the studio timezone's offset; equivalent instants written in other
// offsets are rejected so published schedules are unambiguous.
func (h *ClassHandler) Create(c echo.Context) error {
	id, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var req classCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.Name == "" || req.Slots < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	schedule, err := utils.ToCanonical(req.Schedule, h.RefLoc, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidSchedule)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	class, err := h.Classes.Create(ctx, req.Name, id.ID, schedule, req.Slots)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}

	local, err := utils.ToDisplay(class.Schedule, h.Cfg.ReferenceTZ)
	if err != nil {
		return err
	}
	date, tod := utils.SplitDateTime(local)
	return c.JSON(http.StatusCreated, classResponse{
		ID:             class.ID,
		Name:           class.Name,
		Date:           date,
		Time:           tod,
		Instructor:     id.Username,
		AvailableSlots: class.Slots,
		Status:         class.Status,
	})
}

// List returns one page of classes ordered by start time. Schedules are
// rendered in ?timezone= (default: the studio timezone).
func (h *ClassHandler) List(c echo.Context) error {
	page, err := positiveParam(c.QueryParam("page"), 1)
	if err != nil || page < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidPage)
	}
	limit, err := positiveParam(c.QueryParam("limit"), 10)
	if err != nil || limit < 1 || limit > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidLimit)
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

	listings, total, err := h.Classes.List(ctx, page, limit)
	if err != nil {
		return err
	}

	items := make([]classResponse, 0, len(listings))
	for _, l := range listings {
		local, err := utils.ToDisplay(l.Class.Schedule, tz)
		if err != nil {
			return err
		}
		date, tod := utils.SplitDateTime(local)
		items = append(items, classResponse{
			ID:             l.Class.ID,
			Name:           l.Class.Name,
			Date:           date,
			Time:           tod,
			Instructor:     l.Instructor,
			AvailableSlots: l.AvailableSlots,
			Status:         l.Class.Status,
		})
	}
	totalPages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, classPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	})
}

// positiveParam parses an integer query parameter, falling back to def when
// the parameter is absent.
func positiveParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
