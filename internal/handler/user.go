package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/model"
	"github.com/devanchor/studio-booking/internal/repository"
)

// UserHandler serves the user management endpoints. Who may call what is
// decided by the authorization gate before these run.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, roles *repository.RoleRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Roles: roles}
}

type userResponse struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	Status    string         `json:"status"`
	Roles     []roleResponse `json:"roles"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

type userPatchRequest struct {
	Email    *string  `json:"email"`
	Username *string  `json:"username"`
	Password *string  `json:"password"`
	Status   *string  `json:"status"`
	Roles    []string `json:"roles"`
}

func (h *UserHandler) toResponse(ctx context.Context, u model.User) (userResponse, error) {
	roles, err := h.Users.RolesOf(ctx, u.ID)
	if err != nil {
		return userResponse{}, err
	}
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Status:    u.Status,
		Roles:     toRoleResponses(roles),
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// List returns every account with its roles. Admin only.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		r, err := h.toResponse(ctx, u)
		if err != nil {
			return err
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns a single user by id.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("user_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		}
		return err
	}
	resp, err := h.toResponse(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Patch updates profile fields and, when a roles list is supplied, grants the
// named roles. Role names that do not exist reject the whole request.
func (h *UserHandler) Patch(c echo.Context) error {
	var req userPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.Status != nil {
		switch *req.Status {
		case model.UserActive, model.UserBanned, model.UserSuspended:
		default:
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id := c.Param("user_id")
	patch := repository.UserPatch{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Status:   req.Status,
	}
	if err := h.Users.Update(ctx, id, patch, h.Cfg.BcryptCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		case errors.Is(err, repository.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}

	for _, name := range req.Roles {
		role, err := h.Roles.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
			}
			return err
		}
		if err := h.Users.AssignRole(ctx, id, role.ID, "granted via user update"); err != nil {
			return err
		}
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		}
		return err
	}
	resp, err := h.toResponse(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
