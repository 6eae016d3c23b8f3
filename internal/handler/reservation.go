package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/catalog"
	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/queue"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/slot"
)

// ResourceNamer resolves a display name for a resource.  Satisfied by
// catalog.Client; tests substitute a stub.
type ResourceNamer interface {
	ResourceName(ctx context.Context, id, token string) (string, error)
}

// ReservationHandler serves the booking API.  The store is the authority
// on conflicts; the handler's own availability pre-check only exists to
// fail fast with a clean message.
type ReservationHandler struct {
	Store   repository.ReservationStore
	Catalog ResourceNamer
	Events  queue.Publisher
	Log     zerolog.Logger
}

type createReservationRequest struct {
	ResourceID string  `json:"resource_id"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Purpose    *string `json:"purpose"`
	Notes      *string `json:"notes"`
}

func badWindow(err error) bool {
	return errors.Is(err, slot.ErrBadTime) || errors.Is(err, slot.ErrBadDate) || errors.Is(err, slot.ErrBadOrder)
}

func (h *ReservationHandler) publish(ev queue.NotificationEvent) {
	// best effort: failures are logged by the publisher, the booking is
	// already committed
	if err := h.Events.Publish(context.Background(), ev); err != nil {
		h.Log.Warn().Str("event_type", ev.EventType).Str("reservation_id", ev.ReservationID).Msg("notification not sent")
	}
}

func eventFor(eventType string, r *model.Reservation) queue.NotificationEvent {
	return queue.NotificationEvent{
		EventType:     eventType,
		UserID:        r.UserID,
		Username:      r.Username,
		ReservationID: r.ID,
		ResourceName:  r.ResourceName,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
	}
}

// Create books a time slot.  The window is validated up front, the
// resource name is snapshotted from the catalog, and the store makes the
// final conflict decision.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.ResourceID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resource_id is required"})
	}
	if !slot.ValidDate(req.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must use YYYY-MM-DD"})
	}
	window, err := slot.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, slot.ErrBadOrder) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "times must use HH:MM"})
	}

	ctx := c.Request().Context()
	name, err := h.Catalog.ResourceName(ctx, req.ResourceID, getToken(c))
	if errors.Is(err, catalog.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("catalog lookup failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not verify resource"})
	}

	free, err := h.Store.CheckAvailability(ctx, req.ResourceID, req.Date, window, "")
	if err != nil {
		h.Log.Error().Err(err).Msg("availability check failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create reservation"})
	}
	if !free {
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot is not available"})
	}

	res := &model.Reservation{
		UserID:       getUserID(c),
		Username:     getUsername(c),
		ResourceID:   req.ResourceID,
		ResourceName: name,
		Date:         req.Date,
		StartTime:    window.Start,
		EndTime:      window.End,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	}
	if err := h.Store.Create(ctx, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "time slot is not available"})
		}
		h.Log.Error().Err(err).Msg("reservation create failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create reservation"})
	}

	h.publish(eventFor(queue.EventReservationCreated, res))
	return c.JSON(http.StatusCreated, res)
}

// ListMine returns the caller's reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	skip, limit := pagination(c)
	opts := repository.UserListOptions{
		Status:       model.Status(c.QueryParam("status")),
		UpcomingOnly: c.QueryParam("upcoming_only") == "true",
		Skip:         skip,
		Limit:        limit,
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ctx := c.Request().Context()
	userID := getUserID(c)
	reservations, err := h.Store.ListByUser(ctx, userID, opts)
	if err != nil {
		h.Log.Error().Err(err).Msg("reservation list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	total, err := h.Store.CountByUser(ctx, userID, opts.Status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations, "total": total})
}

// fetchOwned loads a reservation and enforces owner-or-admin access.
// Not-found wins over forbidden so ids cannot be probed.
func (h *ReservationHandler) fetchOwned(c echo.Context) (*model.Reservation, error) {
	res, err := h.Store.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("reservation lookup failed")
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load reservation"})
	}
	if res.UserID != getUserID(c) && !isAdmin(c) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed"})
	}
	return res, nil
}

// Get returns one reservation, owner or admin only.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.fetchOwned(c)
	if res == nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Update reschedules or annotates a reservation.
func (h *ReservationHandler) Update(c echo.Context) error {
	res, err := h.fetchOwned(c)
	if res == nil {
		return err
	}
	var upd model.ReservationUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	updated, err := h.Store.Update(c.Request().Context(), res.ID, upd)
	switch {
	case errors.Is(err, repository.ErrTerminalState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation can no longer be modified"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot is not available"})
	case badWindow(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date or time"})
	case err != nil:
		h.Log.Error().Err(err).Str("reservation_id", res.ID).Msg("reservation update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update reservation"})
	}
	return c.JSON(http.StatusOK, updated)
}

type cancelRequest struct {
	Reason *string `json:"reason"`
}

// Cancel moves a reservation to cancelled and emits a notification.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	res, err := h.fetchOwned(c)
	if res == nil {
		return err
	}
	if res.Status == model.StatusCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation is already cancelled"})
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	cancelled, err := h.Store.Cancel(c.Request().Context(), res.ID, req.Reason)
	switch {
	case errors.Is(err, repository.ErrTerminalState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation can no longer be modified"})
	case err != nil:
		h.Log.Error().Err(err).Str("reservation_id", res.ID).Msg("reservation cancel failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel reservation"})
	}

	ev := eventFor(queue.EventReservationCancelled, cancelled)
	if req.Reason != nil {
		ev.AdditionalData = map[string]string{"reason": *req.Reason}
	}
	h.publish(ev)
	return c.JSON(http.StatusOK, cancelled)
}

func (h *ReservationHandler) finish(c echo.Context, op func(context.Context, string) (*model.Reservation, error)) error {
	res, err := op(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrTerminalState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation can no longer be modified"})
	case err != nil:
		h.Log.Error().Err(err).Str("reservation_id", c.Param("id")).Msg("status change failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update reservation"})
	}
	return c.JSON(http.StatusOK, res)
}

// Complete marks a reservation completed.  Admin only; no notification
// is sent for completions.
func (h *ReservationHandler) Complete(c echo.Context) error {
	return h.finish(c, h.Store.Complete)
}

// NoShow marks a reservation as a no-show.  Admin only; no notification
// is sent.
func (h *ReservationHandler) NoShow(c echo.Context) error {
	return h.finish(c, h.Store.NoShow)
}

// ListAll returns every reservation, newest date first.  Admin only.
func (h *ReservationHandler) ListAll(c echo.Context) error {
	skip, limit := pagination(c)
	opts := repository.AdminListOptions{
		Status: model.Status(c.QueryParam("status")),
		Date:   c.QueryParam("date"),
		Skip:   skip,
		Limit:  limit,
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if opts.Date != "" && !slot.ValidDate(opts.Date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must use YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	reservations, err := h.Store.ListAll(ctx, opts)
	if err != nil {
		h.Log.Error().Err(err).Msg("admin list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	total, err := h.Store.CountAll(ctx, opts.Status, opts.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations, "total": total})
}

// ListByResource returns a resource's reservations, optionally for one
// date.
func (h *ReservationHandler) ListByResource(c echo.Context) error {
	date := c.QueryParam("date")
	if date != "" && !slot.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must use YYYY-MM-DD"})
	}
	skip, limit := pagination(c)
	ctx := c.Request().Context()
	resourceID := c.Param("resource_id")
	reservations, err := h.Store.ListByResource(ctx, resourceID, date, skip, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("resource reservation list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	total, err := h.Store.CountByResource(ctx, resourceID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations, "total": total})
}

// Availability returns the hourly slot grid for a resource on a date.
func (h *ReservationHandler) Availability(c echo.Context) error {
	date := c.QueryParam("date")
	if !slot.ValidDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must use YYYY-MM-DD"})
	}
	resourceID := c.Param("resource_id")
	reservations, err := h.Store.ListByResource(c.Request().Context(), resourceID, date, 0, 0)
	if err != nil {
		h.Log.Error().Err(err).Msg("availability grid failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load availability"})
	}
	active := make([]slot.Interval, 0, len(reservations))
	for _, r := range reservations {
		if r.Status.Active() {
			active = append(active, slot.Interval{Start: r.StartTime, End: r.EndTime})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"resource_id": resourceID,
		"date":        date,
		"slots":       slot.BuildDayGrid(active),
	})
}
