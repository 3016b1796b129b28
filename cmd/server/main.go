package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/sport-facility-reservation/internal/booking"
	"github.com/iliyamo/sport-facility-reservation/internal/config"
	"github.com/iliyamo/sport-facility-reservation/internal/database"
	"github.com/iliyamo/sport-facility-reservation/internal/handler"
	"github.com/iliyamo/sport-facility-reservation/internal/middleware"
	"github.com/iliyamo/sport-facility-reservation/internal/queue"
	"github.com/iliyamo/sport-facility-reservation/internal/repository"
	"github.com/iliyamo/sport-facility-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sports := repository.NewSportRepo(db)
	reservations := repository.NewReservationRepo(db)
	ratings := repository.NewRatingRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Reservation engine
	schedule := booking.ScheduleConfig{
		WorkStart:    cfg.WorkStart,
		WorkEnd:      cfg.WorkEnd,
		SlotDuration: cfg.SlotDuration(),
	}
	svc := booking.NewService(reservations, sports, users, ratings, queue.NewPublisher(), schedule)

	// The consumer turns published activity events into notification
	// rows. It reconnects forever and never takes the server down.
	go func() {
		if err := queue.StartActivityConsumer(notifications); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	sportHandler := handler.NewSportHandler(svc)
	router.RegisterRoutes(e, sportHandler)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), cfg.JWTSecret)
	router.RegisterSports(e, sportHandler, cfg.JWTSecret)
	router.RegisterRatings(e, handler.NewRatingHandler(svc), cfg.JWTSecret)
	router.RegisterNotifications(e, handler.NewNotificationHandler(notifications), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
