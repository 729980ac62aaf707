package router // package router defines how HTTP routes are registered for the API

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4" // Echo web framework for routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/handler"
	"github.com/devanchor/studio-booking/internal/middleware"
)

// Deps bundles everything route registration needs: configuration, the
// Redis client backing the limiter and cache (nil disables both), and the
// constructed handlers.
type Deps struct {
	Cfg      config.Config
	RL       config.RateLimitConfig
	Cache    config.CacheConfig
	Redis    *redis.Client
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Roles    *handler.RoleHandler
	Classes  *handler.ClassHandler
	Bookings *handler.BookingHandler
	Gate     echo.MiddlewareFunc
}

// Register wires the full middleware pipeline and every route under /api/v1.
//
// Pipeline order matters: recovery and logging wrap everything, the rate
// limiter runs before any business work, the request timeout bounds the rest,
// and the authorization gate is the last middleware before handlers so no
// business code ever runs unauthenticated.
func Register(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.Logger())
	e.Use(echomw.Gzip())
	e.Use(middleware.RateLimit(d.RL, d.Redis))
	e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{
		Timeout: d.Cfg.RequestTimeout,
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return echo.NewHTTPError(http.StatusGatewayTimeout, "Request Timeout")
			}
			return err
		},
	}))
	e.Use(d.Gate)

	cache := middleware.CacheGET(d.Cache, d.Redis)

	v1 := e.Group("/api/v1")

	v1.GET("/health", handler.Health)

	// Accounts and sessions.
	v1.POST("/users", d.Auth.Signup)
	v1.POST("/users/login", d.Auth.Login)
	v1.POST("/auth/refresh", d.Auth.Refresh)
	v1.POST("/auth/revoke", d.Auth.Revoke)

	// User administration.
	v1.GET("/users", d.Users.List)
	v1.GET("/users/:user_id", d.Users.Get)
	v1.PATCH("/users/:user_id", d.Users.Patch)

	// Role administration. Listing is cached: role sets change rarely and are
	// read on many pages.
	v1.POST("/roles", d.Roles.Create)
	v1.GET("/roles", d.Roles.List, cache)
	v1.PATCH("/roles/:role_id", d.Roles.Patch)
	v1.DELETE("/roles/:role_id", d.Roles.Delete)

	// Classes and bookings. The class listing is the hottest read path, so it
	// goes through the response cache too.
	v1.POST("/classes", d.Classes.Create)
	v1.GET("/classes", d.Classes.List, cache)
	v1.POST("/book", d.Bookings.Book)
	v1.GET("/bookings", d.Bookings.ListMine)
}

// errorHandler renders every error as {"detail": message}, the single error
// envelope clients see. Unexpected errors are logged with their cause and
// surfaced as a generic 500 so internals never leak.
func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	detail := "An unexpected error occurred."

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
	} else {
		c.Logger().Error(err)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"detail": detail})
}
