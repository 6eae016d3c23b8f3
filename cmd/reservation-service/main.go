package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campushub/reservation/internal/catalog"
	"github.com/campushub/reservation/internal/config"
	"github.com/campushub/reservation/internal/database"
	"github.com/campushub/reservation/internal/handler"
	"github.com/campushub/reservation/internal/queue"
	"github.com/campushub/reservation/internal/remind"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/router"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Str("service", "reservation-service").Logger()

	cfg := config.Load("reservation-service", "8002")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(db, database.ReservationsSchema...); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	store := repository.NewReservationRepo(db)
	rdb := config.NewRedisClient(cfg)
	events := queue.NewAMQPPublisher(cfg.RabbitURL, cfg.NotificationQueue, log.Logger)

	reservations := &handler.ReservationHandler{
		Store:   store,
		Catalog: catalog.New(cfg.ResourceServiceURL, rdb, log.Logger),
		Events:  events,
		Log:     log.Logger,
	}

	reminder := remind.New(store, events, log.Logger)
	stopReminder, err := reminder.Schedule(cfg.ReminderCron)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.ReminderCron).Msg("invalid reminder schedule")
	}
	defer stopReminder()

	e := router.ReservationService(db, cfg.JWTSecret, reservations)
	log.Info().Str("port", cfg.Port).Msg("reservation service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
