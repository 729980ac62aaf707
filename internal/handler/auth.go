package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/model"
	"github.com/devanchor/studio-booking/internal/repository"
	"github.com/devanchor/studio-booking/internal/utils"
)

// AuthHandler owns signup, login and the refresh-token lifecycle.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Roles  *repository.RoleRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, roles *repository.RoleRepo, tokens *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Roles: roles, Tokens: tokens}
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// authResponse is the session payload returned by signup, login and refresh:
// the user profile, its roles and a fresh token pair.
type authResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Username     string         `json:"username"`
	Status       string         `json:"status"`
	Roles        []roleResponse `json:"roles"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
}

// Signup registers a new account. Every signup gets the "client" role; staff
// roles are granted afterwards by an admin through PATCH /users/{user_id}.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, msgConflict)
		}
		return err
	}

	clientRole, err := h.Roles.GetByName(ctx, "client")
	if err != nil {
		// The seed role must exist for signups to work at all.
		return err
	}
	if err := h.Users.AssignRole(ctx, user.ID, clientRole.ID, "default signup role"); err != nil {
		return err
	}

	resp, err := h.issueSession(ctx, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login authenticates by email and password and issues a fresh token pair.
// Wrong email and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
		}
		return err
	}
	if user.Status != model.UserActive {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	resp, err := h.issueSession(ctx, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued in the same database transaction, so a replayed token fails
// cleanly instead of minting a second live session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	sub, err := utils.VerifySubject(h.Cfg.JWTSecret, req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	next, err := utils.NewRefreshToken(h.Cfg.JWTSecret, sub, h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	userID, err := h.Tokens.Rotate(ctx,
		utils.HashRefreshRaw(req.RefreshToken), utils.HashRefreshRaw(next.Token), next.Exp)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		}
		return err
	}
	if userID != sub {
		// Signature and store disagree about the owner; treat as invalid.
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		}
		return err
	}
	if user.Status != model.UserActive {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	roles, err := h.Users.RolesOf(ctx, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Status:       user.Status,
		Roles:        toRoleResponses(roles),
		AccessToken:  access.Token,
		RefreshToken: next.Token,
		TokenType:    "bearer",
	})
}

// Revoke invalidates a single refresh token (logout). Unknown or already
// revoked tokens are reported as invalid rather than silently accepted.
func (h *AuthHandler) Revoke(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, msgInvalidToken)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// issueSession mints an access/refresh pair for a user, stores the refresh
// hash, and assembles the session payload.
func (h *AuthHandler) issueSession(ctx context.Context, user model.User) (authResponse, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, user.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResponse{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, user.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResponse{}, err
	}
	if err := h.Tokens.Store(ctx, user.ID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return authResponse{}, err
	}
	roles, err := h.Users.RolesOf(ctx, user.ID)
	if err != nil {
		return authResponse{}, err
	}
	return authResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Status:       user.Status,
		Roles:        toRoleResponses(roles),
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		TokenType:    "bearer",
	}, nil
}
