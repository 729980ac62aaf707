package handler // handler defines http handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/auth"
	"github.com/devanchor/studio-booking/internal/model"
)

// Client-facing error messages. Kept in one place so wording stays uniform
// across endpoints; the route error handler renders each as {"detail": ...}.
const (
	msgInvalidRequest  = "Invalid request data provided."
	msgNotFound        = "Resource not found."
	msgConflict        = "Resource already exists."
	msgInternal        = "An unexpected error occurred."
	msgUnauthorized    = "Unauthorized access."
	msgInvalidToken    = "Invalid or expired token."
	msgInvalidPage     = "Page number must be a positive integer."
	msgInvalidLimit    = "Limit must be a positive integer not exceeding 100."
	msgInvalidTimezone = "Invalid or unsupported timezone."
	msgInvalidSchedule = "Schedule must be in the future and in the studio timezone."
	msgDeadlinePassed  = "Booking deadline has passed for this class."
	msgNoSlots         = "No slots available for this class."
)

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

// requireIdentity returns the identity bound by the authorization gate or a
// 401. Handlers behind the gate should never hit the error branch; it guards
// against misregistered routes.
func requireIdentity(c echo.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(c)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}
	return id, nil
}

// roleResponse is the role shape embedded in user responses.
type roleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

func toRoleResponses(roles []model.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description.String,
			Status:      r.Status,
		})
	}
	return out
}
