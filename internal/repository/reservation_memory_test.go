package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/slot"
)

const testResource = "6f1b0c52-7a3f-4b86-9a3e-3d3c2b1a0f9e"

func newReservation(userID int64, date, start, end string) *model.Reservation {
	return &model.Reservation{
		UserID:       userID,
		Username:     "alice",
		ResourceID:   testResource,
		ResourceName: "Study Room 101",
		Date:         date,
		StartTime:    start,
		EndTime:      end,
	}
}

func mustCreate(t *testing.T, s *MemoryReservationStore, r *model.Reservation) *model.Reservation {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), r))
	return r
}

func window(t *testing.T, start, end string) slot.Interval {
	t.Helper()
	w, err := slot.ParseInterval(start, end)
	require.NoError(t, err)
	return w
}

func TestCheckAvailabilityEmptyStore(t *testing.T) {
	s := NewMemoryReservationStore()
	free, err := s.CheckAvailability(context.Background(), testResource, "2025-06-01", window(t, "09:00", "10:00"), "")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestBookingScenario(t *testing.T) {
	// Book A=[09:00,10:00) ok; B=[09:30,10:30) conflicts; C=[10:00,11:00)
	// abuts A and succeeds; after cancelling A, D=[09:00,09:45) succeeds.
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.NotEmpty(t, a.ID)

	b := newReservation(2, "2025-06-01", "09:30", "10:30")
	assert.ErrorIs(t, s.Create(ctx, b), ErrConflict)

	mustCreate(t, s, newReservation(2, "2025-06-01", "10:00", "11:00"))

	// disjoint window on the same day is still free
	free, err := s.CheckAvailability(ctx, testResource, "2025-06-01", window(t, "14:00", "15:00"), "")
	require.NoError(t, err)
	assert.True(t, free)

	// same window on another date does not conflict
	mustCreate(t, s, newReservation(3, "2025-06-02", "09:00", "10:00"))

	cancelled, err := s.Cancel(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// the cancelled window is available again
	free, err = s.CheckAvailability(ctx, testResource, "2025-06-01", window(t, "09:00", "10:00"), "")
	require.NoError(t, err)
	assert.True(t, free)

	mustCreate(t, s, newReservation(4, "2025-06-01", "09:00", "09:45"))
}

func TestRescheduleConflictLeavesRecordUnchanged(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	mustCreate(t, s, newReservation(2, "2025-06-01", "10:00", "11:00"))

	start, end := "10:00", "11:00"
	_, err := s.Update(ctx, a.ID, model.ReservationUpdate{StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime)
	assert.Equal(t, "10:00", got.EndTime)
	assert.Nil(t, got.UpdatedAt)
}

func TestRescheduleExcludesSelf(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))

	// Shifting within the original window must not conflict with itself.
	start, end := "09:15", "10:00"
	got, err := s.Update(ctx, a.ID, model.ReservationUpdate{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "09:15", got.StartTime)
	require.NotNil(t, got.UpdatedAt)
}

func TestUpdateNoOpReturnsCurrentRecord(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	got, err := s.Update(ctx, a.ID, model.ReservationUpdate{})
	require.NoError(t, err)
	assert.Nil(t, got.UpdatedAt, "no-op update must not stamp updated_at")
}

func TestTerminalStatesRefuseMutation(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	_, err := s.Cancel(ctx, a.ID, nil)
	require.NoError(t, err)

	// cancelling twice is rejected, not silently repeated
	_, err = s.Cancel(ctx, a.ID, nil)
	assert.ErrorIs(t, err, ErrTerminalState)

	p := "new purpose"
	_, err = s.Update(ctx, a.ID, model.ReservationUpdate{Purpose: &p})
	assert.ErrorIs(t, err, ErrTerminalState)

	b := mustCreate(t, s, newReservation(1, "2025-06-01", "11:00", "12:00"))
	_, err = s.Complete(ctx, b.ID)
	require.NoError(t, err)
	_, err = s.Update(ctx, b.ID, model.ReservationUpdate{Purpose: &p})
	assert.ErrorIs(t, err, ErrTerminalState)
	_, err = s.NoShow(ctx, b.ID)
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestCompletedReservationFreesNothing(t *testing.T) {
	// Completed records stop counting for conflicts: the window opens up.
	s := NewMemoryReservationStore()
	ctx := context.Background()

	a := mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	_, err := s.Complete(ctx, a.ID)
	require.NoError(t, err)

	free, err := s.CheckAvailability(ctx, testResource, "2025-06-01", window(t, "09:00", "10:00"), "")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestMalformedIDResolvesAsNotFound(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	_, err := s.GetByID(ctx, "definitely-not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Cancel(ctx, "12345", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, "", model.ReservationUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByUserSortAndFilters(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	mustCreate(t, s, newReservation(1, "2025-06-02", "09:00", "10:00"))
	mustCreate(t, s, newReservation(1, "2025-06-01", "13:00", "14:00"))
	mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	mustCreate(t, s, newReservation(2, "2025-06-01", "10:00", "11:00"))

	got, err := s.ListByUser(ctx, 1, UserListOptions{Limit: 100})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-06-01", got[0].Date)
	assert.Equal(t, "09:00", got[0].StartTime)
	assert.Equal(t, "13:00", got[1].StartTime)
	assert.Equal(t, "2025-06-02", got[2].Date)

	// status filter
	cancelled, err := s.Cancel(ctx, got[0].ID, nil)
	require.NoError(t, err)
	byStatus, err := s.ListByUser(ctx, 1, UserListOptions{Status: model.StatusCancelled, Limit: 100})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, cancelled.ID, byStatus[0].ID)

	n, err := s.CountByUser(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = s.CountByUser(ctx, 1, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListByUserUpcomingOnly(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	mustCreate(t, s, newReservation(1, "2000-01-01", "09:00", "10:00"))
	mustCreate(t, s, newReservation(1, "2999-01-01", "09:00", "10:00"))

	got, err := s.ListByUser(ctx, 1, UserListOptions{UpcomingOnly: true, Limit: 100})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2999-01-01", got[0].Date)
}

func TestListAllNewestDateFirst(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	mustCreate(t, s, newReservation(1, "2025-06-01", "13:00", "14:00"))
	mustCreate(t, s, newReservation(1, "2025-06-02", "09:00", "10:00"))
	mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))

	got, err := s.ListAll(ctx, AdminListOptions{Limit: 100})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-06-02", got[0].Date)
	assert.Equal(t, "2025-06-01", got[1].Date)
	assert.Equal(t, "09:00", got[1].StartTime, "ascending start within a day")
	assert.Equal(t, "13:00", got[2].StartTime)
}

func TestListPagination(t *testing.T) {
	s := NewMemoryReservationStore()
	ctx := context.Background()

	mustCreate(t, s, newReservation(1, "2025-06-01", "08:00", "09:00"))
	mustCreate(t, s, newReservation(1, "2025-06-01", "09:00", "10:00"))
	mustCreate(t, s, newReservation(1, "2025-06-01", "10:00", "11:00"))

	page, err := s.ListByUser(ctx, 1, UserListOptions{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "09:00", page[0].StartTime)

	empty, err := s.ListByUser(ctx, 1, UserListOptions{Skip: 10, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
