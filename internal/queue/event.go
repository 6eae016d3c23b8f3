package queue

// Notification event types carried on the notifications queue.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationReminder  = "reservation_reminder"
)

// NotificationEvent is the message published for every reservation event
// the worker should turn into a notification.
type NotificationEvent struct {
	EventType      string            `json:"event_type"`
	UserID         int64             `json:"user_id"`
	Username       string            `json:"username"`
	Email          string            `json:"email,omitempty"`
	ReservationID  string            `json:"reservation_id"`
	ResourceName   string            `json:"resource_name"`
	Date           string            `json:"date"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time"`
	AdditionalData map[string]string `json:"additional_data,omitempty"`
}
