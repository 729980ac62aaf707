package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/devanchor/studio-booking/internal/config"
	"github.com/devanchor/studio-booking/internal/database"
	"github.com/devanchor/studio-booking/internal/handler"
	"github.com/devanchor/studio-booking/internal/middleware"
	"github.com/devanchor/studio-booking/internal/queue"
	"github.com/devanchor/studio-booking/internal/repository"
	"github.com/devanchor/studio-booking/internal/router"
	"github.com/devanchor/studio-booking/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	refLoc, err := utils.LoadReference(cfg.ReferenceTZ)
	if err != nil {
		log.Fatalf("invalid REFERENCE_TZ %q: %v", cfg.ReferenceTZ, err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)
	classes := repository.NewClassRepo(db)
	bookings := repository.NewBookingRepo(db)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:      cfg,
		RL:       rlCfg,
		Cache:    cacheCfg,
		Redis:    rdb,
		Auth:     handler.NewAuthHandler(cfg, users, roles, tokens),
		Users:    handler.NewUserHandler(cfg, users, roles),
		Roles:    handler.NewRoleHandler(roles),
		Classes:  handler.NewClassHandler(cfg, classes, refLoc),
		Bookings: handler.NewBookingHandler(cfg, bookings),
		Gate:     middleware.Authenticate(cfg.JWTSecret, users),
	})

	// Consume booking confirmations in the background. The consumer keeps its
	// own reconnect loop, so a broker outage never takes the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
