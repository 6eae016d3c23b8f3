package repository

import (
	"context"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/slot"
)

// UserListOptions filters a user-scoped reservation listing.  A zero
// Status means any status; UpcomingOnly keeps dates >= today (UTC).
type UserListOptions struct {
	Status       model.Status
	UpcomingOnly bool
	Skip         int
	Limit        int
}

// AdminListOptions filters the administrative listing of all reservations.
type AdminListOptions struct {
	Status model.Status
	Date   string
	Skip   int
	Limit  int
}

// ReservationStore is the persistence port for the booking core.  Both the
// MySQL implementation and the in-memory one used in tests satisfy it.
//
// Ordering contract: ListByUser and ListByResource sort by (date asc,
// start_time asc); ListAll sorts by (date desc, start_time asc), the
// administrative newest-first view.
//
// Concurrency contract: Create and Update re-run the availability check
// inside the same transaction as the write and return ErrConflict when the
// window is taken, so a caller's earlier CheckAvailability is advisory
// only.
type ReservationStore interface {
	// CheckAvailability reports whether the window is free of active
	// (pending or confirmed) reservations on the resource and date.
	// excludeID, when non-empty, ignores that reservation's own record so
	// a reschedule does not conflict with itself.
	CheckAvailability(ctx context.Context, resourceID, date string, window slot.Interval, excludeID string) (bool, error)

	// Create persists res as a new confirmed reservation, filling ID,
	// Status and CreatedAt.  Returns ErrConflict if the window is taken.
	Create(ctx context.Context, res *model.Reservation) error

	GetByID(ctx context.Context, id string) (*model.Reservation, error)

	ListByUser(ctx context.Context, userID int64, opts UserListOptions) ([]model.Reservation, error)
	CountByUser(ctx context.Context, userID int64, status model.Status) (int, error)

	ListByResource(ctx context.Context, resourceID, date string, skip, limit int) ([]model.Reservation, error)
	CountByResource(ctx context.Context, resourceID, date string) (int, error)

	ListAll(ctx context.Context, opts AdminListOptions) ([]model.Reservation, error)
	CountAll(ctx context.Context, status model.Status, date string) (int, error)

	// Update applies the non-nil fields of upd, stamps updated_at and
	// returns the result.  An empty update returns the current record
	// without writing.  Returns ErrTerminalState for finished
	// reservations and ErrConflict when a window change overlaps.
	Update(ctx context.Context, id string, upd model.ReservationUpdate) (*model.Reservation, error)

	// Cancel moves an active reservation to cancelled, stamping
	// cancelled_at and the optional reason.
	Cancel(ctx context.Context, id string, reason *string) (*model.Reservation, error)

	// Complete and NoShow are the admin-only terminal transitions; they
	// stamp only updated_at.
	Complete(ctx context.Context, id string) (*model.Reservation, error)
	NoShow(ctx context.Context, id string) (*model.Reservation, error)
}
