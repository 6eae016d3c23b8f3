package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campushub/reservation/internal/config"
	"github.com/campushub/reservation/internal/mail"
	"github.com/campushub/reservation/internal/queue"
	"github.com/campushub/reservation/internal/router"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Str("service", "notification-worker").Logger()

	cfg := config.LoadWorker("notification-worker", "8003")

	var sender mail.Sender
	if cfg.SendGridKey != "" {
		sender = mail.NewSendGridSender(cfg.SendGridKey, cfg.MailFrom)
	} else {
		log.Warn().Msg("SENDGRID_API_KEY not set, emails will only be logged")
		sender = mail.LogSender{Log: log.Logger}
	}

	handle := func(ctx context.Context, ev queue.NotificationEvent) error {
		msg, err := mail.Render(ev)
		if err != nil {
			return err
		}
		to := ev.Email
		if to == "" {
			to = ev.Username + "@" + cfg.MailDomain
		}
		if err := sender.Send(ctx, to, msg); err != nil {
			return err
		}
		log.Info().
			Str("event_type", ev.EventType).
			Str("reservation_id", ev.ReservationID).
			Str("to", to).
			Msg("notification delivered")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// operational endpoints on the side
	e := router.Worker()
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("ops server stopped")
		}
	}()

	consumer := queue.NewConsumer(cfg.RabbitURL, cfg.NotificationQueue, log.Logger)
	if err := consumer.Run(ctx, handle); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("shutting down")
}
