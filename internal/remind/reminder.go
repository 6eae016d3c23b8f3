// Package remind publishes reminder events for tomorrow's confirmed
// reservations on a schedule.
package remind

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/queue"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/slot"
)

// Reminder scans for next-day confirmed reservations and emits a
// reservation_reminder event for each.
type Reminder struct {
	Store  repository.ReservationStore
	Events queue.Publisher
	Log    zerolog.Logger

	// now is swappable in tests
	now func() time.Time
}

// New returns a Reminder over the given store and publisher.
func New(store repository.ReservationStore, events queue.Publisher, log zerolog.Logger) *Reminder {
	return &Reminder{
		Store:  store,
		Events: events,
		Log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run publishes reminders for every confirmed reservation tomorrow.
func (r *Reminder) Run(ctx context.Context) error {
	tomorrow := r.now().AddDate(0, 0, 1).Format(slot.DateLayout)
	reservations, err := r.Store.ListAll(ctx, repository.AdminListOptions{
		Status: model.StatusConfirmed,
		Date:   tomorrow,
	})
	if err != nil {
		r.Log.Error().Err(err).Msg("reminder scan failed")
		return err
	}
	sent := 0
	for i := range reservations {
		res := &reservations[i]
		ev := queue.NotificationEvent{
			EventType:     queue.EventReservationReminder,
			UserID:        res.UserID,
			Username:      res.Username,
			ReservationID: res.ID,
			ResourceName:  res.ResourceName,
			Date:          res.Date,
			StartTime:     res.StartTime,
			EndTime:       res.EndTime,
		}
		if err := r.Events.Publish(ctx, ev); err != nil {
			// keep going, the publisher already logged the failure
			continue
		}
		sent++
	}
	r.Log.Info().Str("date", tomorrow).Int("reminders", sent).Msg("reminder sweep done")
	return nil
}

// Schedule registers the sweep on the given cron expression and starts
// the scheduler.  The returned stop function blocks until a running
// sweep finishes.
func (r *Reminder) Schedule(spec string) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_ = r.Run(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
