package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/database"
	"github.com/autonew/carwash-booking/internal/handler"
	"github.com/autonew/carwash-booking/internal/imagestore"
	"github.com/autonew/carwash-booking/internal/queue"
	"github.com/autonew/carwash-booking/internal/repository"
	"github.com/autonew/carwash-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	var images imagestore.Client = imagestore.Disabled{}
	if cfg.CloudName != "" {
		images = imagestore.New(cfg.CloudName, cfg.CloudAPIKey, cfg.CloudAPISecret)
	}

	users := repository.NewUserRepo(db)
	businesses := repository.NewBusinessRepo(db)
	services := repository.NewServiceRepo(db)
	reservations := repository.NewReservationRepo(db)
	subscriptions := repository.NewSubscriptionRepo(db)
	liquidations := repository.NewLiquidationRepo(db)
	ratings := repository.NewRatingRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		Cfg:          cfg,
		RDB:          rdb,
		Auth:         handler.NewAuthHandler(cfg, users, images),
		Business:     handler.NewBusinessHandler(cfg, businesses, services, images),
		BusinessRes:  handler.NewBusinessReservationHandler(cfg, reservations, businesses),
		Reservations: handler.NewReservationHandler(cfg, reservations, services, subscriptions, users, businesses),
		Plans:        handler.NewSubscriptionHandler(cfg, subscriptions),
		Payouts:      handler.NewPayoutHandler(cfg, liquidations),
		Ratings:      handler.NewRatingHandler(cfg, ratings, reservations),
	})

	// Completed-reservation audit log; reconnects on broker failure.
	go func() {
		if err := queue.StartCompletedConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
