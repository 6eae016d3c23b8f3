package model

import "time"

// Status enumerates the lifecycle states of a reservation.  A reservation
// is created directly in StatusConfirmed; StatusPending exists so that an
// approval-gated creation path can be added later without changing the
// state machine.  Cancelled, completed and no_show are terminal: once a
// reservation enters one of them, no further mutation is permitted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether a reservation in this status occupies its time
// window.  Only active reservations participate in conflict checks.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status refuses any further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Reservation records a user's booking of a resource for a time window on
// a single calendar day.  Date is a YYYY-MM-DD string and StartTime/EndTime
// are zero-padded 24h HH:MM strings; the window is half-open, so a
// reservation ending at 10:00 does not conflict with one starting at 10:00.
// ResourceName is a snapshot taken from the catalog at creation time and is
// not kept in sync with later renames.
type Reservation struct {
	ID                 string     `json:"id"`
	UserID             int64      `json:"user_id"`
	Username           string     `json:"username"`
	ResourceID         string     `json:"resource_id"`
	ResourceName       string     `json:"resource_name,omitempty"`
	Date               string     `json:"date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Purpose            *string    `json:"purpose"`
	Notes              *string    `json:"notes"`
	Status             Status     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `json:"cancellation_reason"`
}

// ReservationUpdate carries a partial update.  Nil fields are left
// untouched; an update where every field is nil is a no-op.
type ReservationUpdate struct {
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Purpose   *string `json:"purpose"`
	Notes     *string `json:"notes"`
}

// Empty reports whether the update would change nothing.
func (u ReservationUpdate) Empty() bool {
	return u.Date == nil && u.StartTime == nil && u.EndTime == nil && u.Purpose == nil && u.Notes == nil
}

// ChangesWindow reports whether the update touches the reservation's date
// or time window and therefore requires a fresh availability check.
func (u ReservationUpdate) ChangesWindow() bool {
	return u.Date != nil || u.StartTime != nil || u.EndTime != nil
}
