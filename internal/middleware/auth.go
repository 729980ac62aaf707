package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devanchor/studio-booking/internal/auth"
	"github.com/devanchor/studio-booking/internal/repository"
	"github.com/devanchor/studio-booking/internal/utils"
)

// Error messages surfaced to clients. 401 responses never reveal which part
// of the verification failed beyond the format/verify split.
const (
	msgUnauthorized = "Unauthorized access."
	msgInvalidToken = "Invalid or expired token."
	msgForbidden    = "Access forbidden."
)

// publicRoutes lists (exact path, method) pairs that bypass authentication
// entirely. These are unauthenticated by business requirement: signup,
// login, health, role listing/creation and refresh.
var publicRoutes = []struct {
	Path   string
	Method string
}{
	{"/api/v1/health", http.MethodGet},
	{"/api/v1/users", http.MethodPost},
	{"/api/v1/users/login", http.MethodPost},
	{"/api/v1/roles", http.MethodGet},
	{"/api/v1/roles", http.MethodPost},
	{"/api/v1/auth/refresh", http.MethodPost},
}

// Authenticate returns the authorization gate: it resolves a bearer access
// token to a user and their active roles, checks the permission matrix, and
// binds the resulting identity into the request context. It must run before
// any business handler.
func Authenticate(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			method := c.Request().Method

			for _, route := range publicRoutes {
				if route.Path == path && route.Method == method {
					return next(c)
				}
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			// Fail fast on anything that is not even token-shaped before
			// doing signature work.
			if len(strings.Split(raw, ".")) != 3 {
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}

			sub, err := utils.VerifySubject(secret, raw, utils.TokenTypeAccess)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			user, err := users.GetByID(ctx, sub)
			if err != nil {
				// A verified subject with no user row (deleted account) is
				// indistinguishable from a bad token on purpose.
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
			}
			roles, err := users.ActiveRoleNames(ctx, user.ID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "An unexpected error occurred.")
			}

			if !auth.Allowed(path, method, roles) {
				return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
			}

			auth.Bind(c, auth.Identity{
				ID:       user.ID,
				Email:    user.Email,
				Username: user.Username,
				Roles:    roles,
			})
			return next(c)
		}
	}
}
