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
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Str("service", "user-service").Logger()

	cfg := config.Load("user-service", "8000")

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if err := database.Migrate(db, database.UsersSchema...); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	auth := &handler.AuthHandler{
		Users:  users,
		Tokens: tokens,
		Cfg: handler.AuthConfig{
			JWTSecret:       cfg.JWTSecret,
			AccessTokenTTL:  cfg.AccessTokenTTL,
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			BcryptCost:      cfg.BcryptCost,
		},
		Log: log.Logger,
	}
	userHandler := &handler.UserHandler{
		Users:      users,
		Tokens:     tokens,
		BcryptCost: cfg.BcryptCost,
		Log:        log.Logger,
	}

	e := router.UserService(db, cfg.JWTSecret, auth, userHandler)
	log.Info().Str("port", cfg.Port).Msg("user service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
