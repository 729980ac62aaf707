package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/model"
	"github.com/devanchor/studio-booking/internal/repository"
)

// RoleHandler serves role administration endpoints.
type RoleHandler struct {
	Roles *repository.RoleRepo
}

func NewRoleHandler(roles *repository.RoleRepo) *RoleHandler {
	return &RoleHandler{Roles: roles}
}

type roleCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type rolePatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Create registers a new role. Names are case-insensitive.
func (h *RoleHandler) Create(c echo.Context) error {
	var req roleCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.Create(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}
	return c.JSON(http.StatusCreated, toRoleResponses([]model.Role{role})[0])
}

// List returns roles, optionally filtered by ?status=.
func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	roles, err := h.Roles.List(ctx, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(roles))
}

// Patch updates a role's name, description or status.
func (h *RoleHandler) Patch(c echo.Context) error {
	var req rolePatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role, err := h.Roles.Update(ctx, c.Param("role_id"), repository.RolePatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		case errors.Is(err, repository.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses([]model.Role{role})[0])
}

// Delete removes a role that no user still holds.
func (h *RoleHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Roles.Delete(ctx, c.Param("role_id")); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, msgNotFound)
		case errors.Is(err, repository.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
