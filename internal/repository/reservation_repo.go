package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/slot"
)

// ReservationRepo is the MySQL-backed ReservationStore.  All timestamps
// are stored in UTC.  Reservation ids are store-generated UUID strings; a
// string that does not parse as a UUID is treated exactly like a missing
// record.
//
// Create and Update run their availability check and the subsequent write
// in one transaction.  The check selects the active rows of the
// (resource_id, date) pair FOR UPDATE; under InnoDB this takes index
// record and gap locks on idx_resource_date, so two concurrent bookings
// of the same resource and day serialize and the loser sees the winner's
// row instead of double-inserting.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = "id, user_id, username, resource_id, resource_name, `date`, start_time, end_time, purpose, notes, status, created_at, updated_at, cancelled_at, cancellation_reason"

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var (
		r            model.Reservation
		resourceName sql.NullString
		purpose      sql.NullString
		notes        sql.NullString
		updatedAt    sql.NullTime
		cancelledAt  sql.NullTime
		cancelReason sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.Username, &r.ResourceID, &resourceName,
		&r.Date, &r.StartTime, &r.EndTime, &purpose, &notes,
		&r.Status, &r.CreatedAt, &updatedAt, &cancelledAt, &cancelReason,
	)
	if err != nil {
		return nil, err
	}
	if resourceName.Valid {
		r.ResourceName = resourceName.String
	}
	if purpose.Valid {
		p := purpose.String
		r.Purpose = &p
	}
	if notes.Valid {
		n := notes.String
		r.Notes = &n
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		r.UpdatedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		r.CancelledAt = &t
	}
	if cancelReason.Valid {
		s := cancelReason.String
		r.CancellationReason = &s
	}
	return &r, nil
}

// validID reports whether id is in the store's UUID format.  Malformed
// ids resolve as "not found", never as a query error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// conflictQuery matches any active reservation whose half-open window
// intersects the candidate: existing.start < cand.end AND existing.end >
// cand.start.  Equivalent to the three explicit cases of slot.Overlaps.
const conflictQuery = "SELECT id FROM reservations" +
	" WHERE resource_id = ? AND `date` = ?" +
	" AND status IN ('pending','confirmed')" +
	" AND start_time < ? AND end_time > ?"

// CheckAvailability reports whether the window is free.  This is the
// advisory pre-check; the authoritative check runs inside Create/Update.
func (r *ReservationRepo) CheckAvailability(ctx context.Context, resourceID, date string, window slot.Interval, excludeID string) (bool, error) {
	q := conflictQuery
	args := []any{resourceID, date, window.End, window.Start}
	if excludeID != "" && validID(excludeID) {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}
	q += " LIMIT 1"
	var id string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// checkAvailabilityTx is CheckAvailability inside a transaction, with
// FOR UPDATE so the scanned range stays stable until commit.
func (r *ReservationRepo) checkAvailabilityTx(ctx context.Context, tx *sql.Tx, resourceID, date string, window slot.Interval, excludeID string) (bool, error) {
	q := conflictQuery
	args := []any{resourceID, date, window.End, window.Start}
	if excludeID != "" && validID(excludeID) {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}
	q += " LIMIT 1 FOR UPDATE"
	var id string
	err := tx.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Create inserts a new confirmed reservation.  It fills ID, Status and
// CreatedAt on the provided record and returns ErrConflict when the
// window is already taken.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	window, err := slot.ParseInterval(res.StartTime, res.EndTime)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	free, err := r.checkAvailabilityTx(ctx, tx, res.ResourceID, res.Date, window, "")
	if err != nil {
		return err
	}
	if !free {
		return ErrConflict
	}
	res.ID = uuid.NewString()
	res.Status = model.StatusConfirmed
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = nil
	res.CancelledAt = nil
	res.CancellationReason = nil

	const ins = "INSERT INTO reservations (" + reservationCols + ") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,NULL,NULL,NULL)"
	_, err = tx.ExecContext(ctx, ins,
		res.ID, res.UserID, res.Username, res.ResourceID, nullStr(res.ResourceName),
		res.Date, res.StartTime, res.EndTime, res.Purpose, res.Notes,
		string(res.Status), res.CreatedAt,
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns the reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const q = "SELECT " + reservationCols + " FROM reservations WHERE id = ?"
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByUser returns the user's reservations sorted by (date asc,
// start_time asc), optionally filtered by status and upcoming dates.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID int64, opts UserListOptions) ([]model.Reservation, error) {
	q := "SELECT " + reservationCols + " FROM reservations WHERE user_id = ?"
	args := []any{userID}
	if opts.Status != "" {
		q += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	if opts.UpcomingOnly {
		q += " AND `date` >= ?"
		args = append(args, time.Now().UTC().Format(slot.DateLayout))
	}
	q += " ORDER BY `date` ASC, start_time ASC LIMIT ? OFFSET ?"
	args = append(args, limitOrMax(opts.Limit), opts.Skip)
	return r.queryReservations(ctx, q, args...)
}

// CountByUser mirrors ListByUser for pagination totals.  The upcoming
// filter is intentionally not applied to the count.
func (r *ReservationRepo) CountByUser(ctx context.Context, userID int64, status model.Status) (int, error) {
	q := "SELECT COUNT(*) FROM reservations WHERE user_id = ?"
	args := []any{userID}
	if status != "" {
		q += " AND status = ?"
		args = append(args, string(status))
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// ListByResource returns a resource's reservations sorted by (date asc,
// start_time asc), optionally restricted to one date.
func (r *ReservationRepo) ListByResource(ctx context.Context, resourceID, date string, skip, limit int) ([]model.Reservation, error) {
	q := "SELECT " + reservationCols + " FROM reservations WHERE resource_id = ?"
	args := []any{resourceID}
	if date != "" {
		q += " AND `date` = ?"
		args = append(args, date)
	}
	q += " ORDER BY `date` ASC, start_time ASC LIMIT ? OFFSET ?"
	args = append(args, limitOrMax(limit), skip)
	return r.queryReservations(ctx, q, args...)
}

// CountByResource mirrors ListByResource.
func (r *ReservationRepo) CountByResource(ctx context.Context, resourceID, date string) (int, error) {
	q := "SELECT COUNT(*) FROM reservations WHERE resource_id = ?"
	args := []any{resourceID}
	if date != "" {
		q += " AND `date` = ?"
		args = append(args, date)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// ListAll is the administrative listing, sorted newest date first with
// start_time ascending within a day.
func (r *ReservationRepo) ListAll(ctx context.Context, opts AdminListOptions) ([]model.Reservation, error) {
	q := "SELECT " + reservationCols + " FROM reservations WHERE 1=1"
	args := []any{}
	if opts.Status != "" {
		q += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	if opts.Date != "" {
		q += " AND `date` = ?"
		args = append(args, opts.Date)
	}
	q += " ORDER BY `date` DESC, start_time ASC LIMIT ? OFFSET ?"
	args = append(args, limitOrMax(opts.Limit), opts.Skip)
	return r.queryReservations(ctx, q, args...)
}

// CountAll mirrors ListAll.
func (r *ReservationRepo) CountAll(ctx context.Context, status model.Status, date string) (int, error) {
	q := "SELECT COUNT(*) FROM reservations WHERE 1=1"
	args := []any{}
	if status != "" {
		q += " AND status = ?"
		args = append(args, string(status))
	}
	if date != "" {
		q += " AND `date` = ?"
		args = append(args, date)
	}
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// Update applies the non-nil fields of upd inside a transaction.  When the
// update moves the time window, the availability check runs against the
// new (resource, date) excluding the reservation's own row.  An empty
// update returns the current record without writing.
func (r *ReservationRepo) Update(ctx context.Context, id string, upd model.ReservationUpdate) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = "SELECT " + reservationCols + " FROM reservations WHERE id = ? FOR UPDATE"
	cur, err := scanReservation(tx.QueryRowContext(ctx, sel, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cur.Status.Terminal() {
		return nil, ErrTerminalState
	}
	if upd.Date != nil {
		cur.Date = *upd.Date
	}
	if upd.StartTime != nil {
		cur.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		cur.EndTime = *upd.EndTime
	}
	if upd.Purpose != nil {
		cur.Purpose = upd.Purpose
	}
	if upd.Notes != nil {
		cur.Notes = upd.Notes
	}
	if upd.ChangesWindow() {
		window, err := slot.ParseInterval(cur.StartTime, cur.EndTime)
		if err != nil {
			return nil, err
		}
		if !slot.ValidDate(cur.Date) {
			return nil, slot.ErrBadDate
		}
		free, err := r.checkAvailabilityTx(ctx, tx, cur.ResourceID, cur.Date, window, id)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, ErrConflict
		}
	}
	now := time.Now().UTC()
	cur.UpdatedAt = &now
	const up = "UPDATE reservations SET `date` = ?, start_time = ?, end_time = ?, purpose = ?, notes = ?, updated_at = ? WHERE id = ?"
	if _, err := tx.ExecContext(ctx, up, cur.Date, cur.StartTime, cur.EndTime, cur.Purpose, cur.Notes, now, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return cur, nil
}

// Cancel moves an active reservation to cancelled, stamping cancelled_at
// and the optional free-text reason.
func (r *ReservationRepo) Cancel(ctx context.Context, id string, reason *string) (*model.Reservation, error) {
	return r.finish(ctx, id, model.StatusCancelled, reason)
}

// Complete marks an active reservation completed.  Only updated_at is
// stamped; no event accompanies this transition.
func (r *ReservationRepo) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return r.finish(ctx, id, model.StatusCompleted, nil)
}

// NoShow marks an active reservation as a no-show.
func (r *ReservationRepo) NoShow(ctx context.Context, id string) (*model.Reservation, error) {
	return r.finish(ctx, id, model.StatusNoShow, nil)
}

// finish performs a terminal transition under FOR UPDATE so a concurrent
// transition cannot resurrect or double-finish the record.
func (r *ReservationRepo) finish(ctx context.Context, id string, to model.Status, reason *string) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = "SELECT " + reservationCols + " FROM reservations WHERE id = ? FOR UPDATE"
	cur, err := scanReservation(tx.QueryRowContext(ctx, sel, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cur.Status.Terminal() {
		return nil, ErrTerminalState
	}
	now := time.Now().UTC()
	cur.Status = to
	cur.UpdatedAt = &now
	if to == model.StatusCancelled {
		cur.CancelledAt = &now
		cur.CancellationReason = reason
		const up = "UPDATE reservations SET status = ?, updated_at = ?, cancelled_at = ?, cancellation_reason = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, up, string(to), now, now, reason, id); err != nil {
			return nil, err
		}
	} else {
		const up = "UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?"
		if _, err := tx.ExecContext(ctx, up, string(to), now, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return cur, nil
}

func (r *ReservationRepo) queryReservations(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// limitOrMax maps the "no limit" zero value to a cap the LIMIT clause
// can carry.
func limitOrMax(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
