package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/slot"
)

// MemoryReservationStore is an in-memory ReservationStore guarded by a
// mutex.  It implements the exact semantics of the MySQL store and backs
// the handler and store tests; the mutex makes every check-then-write a
// single critical section, so it honors the same no-double-booking
// contract.
type MemoryReservationStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Reservation
	// now is swappable in tests that need a fixed clock.
	now func() time.Time
}

// NewMemoryReservationStore returns an empty in-memory store.
func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{
		byID: make(map[string]*model.Reservation),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func cloneReservation(r *model.Reservation) *model.Reservation {
	c := *r
	return &c
}

func (s *MemoryReservationStore) conflictLocked(resourceID, date string, window slot.Interval, excludeID string) bool {
	for _, r := range s.byID {
		if r.ResourceID != resourceID || r.Date != date || !r.Status.Active() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if slot.Overlaps(slot.Interval{Start: r.StartTime, End: r.EndTime}, window) {
			return true
		}
	}
	return false
}

// CheckAvailability reports whether the window is free of active
// reservations on the resource and date.
func (s *MemoryReservationStore) CheckAvailability(_ context.Context, resourceID, date string, window slot.Interval, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if excludeID != "" && !validID(excludeID) {
		excludeID = ""
	}
	return !s.conflictLocked(resourceID, date, window, excludeID), nil
}

// Create persists a new confirmed reservation, re-running the conflict
// check under the write lock.
func (s *MemoryReservationStore) Create(_ context.Context, res *model.Reservation) error {
	window, err := slot.ParseInterval(res.StartTime, res.EndTime)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflictLocked(res.ResourceID, res.Date, window, "") {
		return ErrConflict
	}
	res.ID = uuid.NewString()
	res.Status = model.StatusConfirmed
	res.CreatedAt = s.now()
	res.UpdatedAt = nil
	res.CancelledAt = nil
	res.CancellationReason = nil
	s.byID[res.ID] = cloneReservation(res)
	return nil
}

// GetByID returns the reservation or ErrNotFound; malformed ids resolve
// as not found.
func (s *MemoryReservationStore) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneReservation(r), nil
}

func sortAscending(rs []model.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Date != rs[j].Date {
			return rs[i].Date < rs[j].Date
		}
		return rs[i].StartTime < rs[j].StartTime
	})
}

func paginate(rs []model.Reservation, skip, limit int) []model.Reservation {
	if skip >= len(rs) {
		return []model.Reservation{}
	}
	rs = rs[skip:]
	if limit > 0 && limit < len(rs) {
		rs = rs[:limit]
	}
	return rs
}

// ListByUser returns the user's reservations sorted by (date asc,
// start_time asc).
func (s *MemoryReservationStore) ListByUser(_ context.Context, userID int64, opts UserListOptions) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := s.now().Format(slot.DateLayout)
	out := make([]model.Reservation, 0)
	for _, r := range s.byID {
		if r.UserID != userID {
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		if opts.UpcomingOnly && r.Date < today {
			continue
		}
		out = append(out, *cloneReservation(r))
	}
	sortAscending(out)
	return paginate(out, opts.Skip, opts.Limit), nil
}

// CountByUser mirrors ListByUser without the upcoming filter.
func (s *MemoryReservationStore) CountByUser(_ context.Context, userID int64, status model.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.byID {
		if r.UserID == userID && (status == "" || r.Status == status) {
			n++
		}
	}
	return n, nil
}

// ListByResource returns a resource's reservations sorted by (date asc,
// start_time asc).
func (s *MemoryReservationStore) ListByResource(_ context.Context, resourceID, date string, skip, limit int) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.byID {
		if r.ResourceID != resourceID {
			continue
		}
		if date != "" && r.Date != date {
			continue
		}
		out = append(out, *cloneReservation(r))
	}
	sortAscending(out)
	return paginate(out, skip, limit), nil
}

// CountByResource mirrors ListByResource.
func (s *MemoryReservationStore) CountByResource(_ context.Context, resourceID, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.byID {
		if r.ResourceID == resourceID && (date == "" || r.Date == date) {
			n++
		}
	}
	return n, nil
}

// ListAll sorts newest date first, start_time ascending within a day.
func (s *MemoryReservationStore) ListAll(_ context.Context, opts AdminListOptions) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for _, r := range s.byID {
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		if opts.Date != "" && r.Date != opts.Date {
			continue
		}
		out = append(out, *cloneReservation(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return paginate(out, opts.Skip, opts.Limit), nil
}

// CountAll mirrors ListAll.
func (s *MemoryReservationStore) CountAll(_ context.Context, status model.Status, date string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.byID {
		if (status == "" || r.Status == status) && (date == "" || r.Date == date) {
			n++
		}
	}
	return n, nil
}

// Update applies the non-nil fields of upd under the write lock.
func (s *MemoryReservationStore) Update(_ context.Context, id string, upd model.ReservationUpdate) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Empty() {
		return cloneReservation(cur), nil
	}
	if cur.Status.Terminal() {
		return nil, ErrTerminalState
	}
	next := cloneReservation(cur)
	if upd.Date != nil {
		next.Date = *upd.Date
	}
	if upd.StartTime != nil {
		next.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		next.EndTime = *upd.EndTime
	}
	if upd.Purpose != nil {
		next.Purpose = upd.Purpose
	}
	if upd.Notes != nil {
		next.Notes = upd.Notes
	}
	if upd.ChangesWindow() {
		window, err := slot.ParseInterval(next.StartTime, next.EndTime)
		if err != nil {
			return nil, err
		}
		if !slot.ValidDate(next.Date) {
			return nil, slot.ErrBadDate
		}
		if s.conflictLocked(next.ResourceID, next.Date, window, id) {
			return nil, ErrConflict
		}
	}
	now := s.now()
	next.UpdatedAt = &now
	s.byID[id] = next
	return cloneReservation(next), nil
}

// Cancel moves an active reservation to cancelled.
func (s *MemoryReservationStore) Cancel(_ context.Context, id string, reason *string) (*model.Reservation, error) {
	return s.finish(id, model.StatusCancelled, reason)
}

// Complete marks an active reservation completed.
func (s *MemoryReservationStore) Complete(_ context.Context, id string) (*model.Reservation, error) {
	return s.finish(id, model.StatusCompleted, nil)
}

// NoShow marks an active reservation as a no-show.
func (s *MemoryReservationStore) NoShow(_ context.Context, id string) (*model.Reservation, error) {
	return s.finish(id, model.StatusNoShow, nil)
}

func (s *MemoryReservationStore) finish(id string, to model.Status, reason *string) (*model.Reservation, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if cur.Status.Terminal() {
		return nil, ErrTerminalState
	}
	now := s.now()
	next := cloneReservation(cur)
	next.Status = to
	next.UpdatedAt = &now
	if to == model.StatusCancelled {
		next.CancelledAt = &now
		next.CancellationReason = reason
	}
	s.byID[id] = next
	return cloneReservation(next), nil
}

var _ ReservationStore = (*MemoryReservationStore)(nil)
var _ ReservationStore = (*ReservationRepo)(nil)
