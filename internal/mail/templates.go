package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/campushub/reservation/internal/queue"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// The bodies are deliberately small; resource name, date and window are
// the only details a recipient needs.
var htmlTemplates = template.Must(template.New("mail").Parse(`
{{define "reservation_created"}}<p>Hi {{.Username}},</p>
<p>Your reservation is confirmed.</p>
<p><strong>{{.ResourceName}}</strong><br>{{.Date}} from {{.StartTime}} to {{.EndTime}}</p>{{end}}
{{define "reservation_cancelled"}}<p>Hi {{.Username}},</p>
<p>Your reservation has been cancelled.</p>
<p><strong>{{.ResourceName}}</strong><br>{{.Date}} from {{.StartTime}} to {{.EndTime}}</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}{{end}}
{{define "reservation_reminder"}}<p>Hi {{.Username}},</p>
<p>A reminder about your reservation tomorrow.</p>
<p><strong>{{.ResourceName}}</strong><br>{{.Date}} from {{.StartTime}} to {{.EndTime}}</p>{{end}}
`))

type templateData struct {
	Username     string
	ResourceName string
	Date         string
	StartTime    string
	EndTime      string
	Reason       string
}

// Render turns a notification event into a deliverable message.  Unknown
// event types are an error so the worker drops them loudly.
func Render(ev queue.NotificationEvent) (Message, error) {
	data := templateData{
		Username:     ev.Username,
		ResourceName: ev.ResourceName,
		Date:         ev.Date,
		StartTime:    ev.StartTime,
		EndTime:      ev.EndTime,
		Reason:       ev.AdditionalData["reason"],
	}

	var subject, text string
	switch ev.EventType {
	case queue.EventReservationCreated:
		subject = fmt.Sprintf("Reservation confirmed: %s on %s", ev.ResourceName, ev.Date)
		text = fmt.Sprintf("Hi %s,\n\nYour reservation is confirmed.\n\n%s\n%s from %s to %s\n",
			ev.Username, ev.ResourceName, ev.Date, ev.StartTime, ev.EndTime)
	case queue.EventReservationCancelled:
		subject = fmt.Sprintf("Reservation cancelled: %s on %s", ev.ResourceName, ev.Date)
		text = fmt.Sprintf("Hi %s,\n\nYour reservation has been cancelled.\n\n%s\n%s from %s to %s\n",
			ev.Username, ev.ResourceName, ev.Date, ev.StartTime, ev.EndTime)
		if data.Reason != "" {
			text += fmt.Sprintf("\nReason: %s\n", data.Reason)
		}
	case queue.EventReservationReminder:
		subject = fmt.Sprintf("Reminder: %s tomorrow at %s", ev.ResourceName, ev.StartTime)
		text = fmt.Sprintf("Hi %s,\n\nA reminder about your reservation tomorrow.\n\n%s\n%s from %s to %s\n",
			ev.Username, ev.ResourceName, ev.Date, ev.StartTime, ev.EndTime)
	default:
		return Message{}, fmt.Errorf("unknown event type %q", ev.EventType)
	}

	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, ev.EventType, data); err != nil {
		return Message{}, err
	}
	return Message{Subject: subject, HTML: html.String(), Text: text}, nil
}
