package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campushub/reservation/internal/config"
	"github.com/campushub/reservation/internal/database"
	"github.com/campushub/reservation/internal/handler"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/router"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Str("service", "resource-service").Logger()

	cfg := config.Load("resource-service", "8001")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(db, database.ResourcesSchema...); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	resources := &handler.ResourceHandler{
		Resources: repository.NewResourceRepo(db),
		Log:       log.Logger,
	}

	e := router.ResourceService(db, cfg.JWTSecret, resources)
	log.Info().Str("port", cfg.Port).Msg("resource service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
