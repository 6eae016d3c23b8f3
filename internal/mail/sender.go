package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers a rendered message to a recipient.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

// SendGridSender delivers over the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendGridSender returns a sender using the given API key.
func NewSendGridSender(apiKey, fromAddr string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail("CampusHub", fromAddr),
	}
}

// Send delivers a single email.
func (s *SendGridSender) Send(ctx context.Context, to string, msg Message) error {
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail("", to), msg.Text, msg.HTML)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them.  Used
// when no SendGrid key is configured, so the worker still drains the
// queue in development.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, to string, msg Message) error {
	s.Log.Info().Str("to", to).Str("subject", msg.Subject).Msg("email (log only)")
	return nil
}

var _ Sender = (*SendGridSender)(nil)
var _ Sender = LogSender{}
