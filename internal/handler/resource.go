package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campushub/reservation/internal/model"
	"github.com/campushub/reservation/internal/repository"
	"github.com/campushub/reservation/internal/slot"
)

// ResourceHandler serves the resource catalog.  Writes are admin only;
// the router enforces that.
type ResourceHandler struct {
	Resources *repository.ResourceRepo
	Log       zerolog.Logger
}

type createResourceRequest struct {
	Name                string             `json:"name"`
	ResourceType        model.ResourceType `json:"resource_type"`
	Description         *string            `json:"description"`
	Location            string             `json:"location"`
	Building            *string            `json:"building"`
	Floor               *int               `json:"floor"`
	Capacity            int                `json:"capacity"`
	Amenities           []string           `json:"amenities"`
	AvailableDays       []int              `json:"available_days"`
	AvailableHours      *model.TimeSlot    `json:"available_hours"`
	SlotDurationMinutes int                `json:"slot_duration_minutes"`
	MaxBookingHours     int                `json:"max_booking_hours"`
	RequiresApproval    bool               `json:"requires_approval"`
}

// Create adds a resource to the catalog.
func (h *ResourceHandler) Create(c echo.Context) error {
	var req createResourceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !req.ResourceType.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource_type"})
	}
	if strings.TrimSpace(req.Location) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "location is required"})
	}

	res := model.Resource{
		Name:                req.Name,
		ResourceType:        req.ResourceType,
		Description:         req.Description,
		Location:            req.Location,
		Building:            req.Building,
		Floor:               req.Floor,
		Capacity:            req.Capacity,
		Amenities:           req.Amenities,
		AvailableDays:       req.AvailableDays,
		AvailableHours:      model.TimeSlot{StartTime: "08:00", EndTime: "22:00"},
		SlotDurationMinutes: req.SlotDurationMinutes,
		MaxBookingHours:     req.MaxBookingHours,
		RequiresApproval:    req.RequiresApproval,
	}
	if req.AvailableHours != nil {
		if !slot.ValidTime(req.AvailableHours.StartTime) || !slot.ValidTime(req.AvailableHours.EndTime) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "available_hours must use HH:MM"})
		}
		res.AvailableHours = *req.AvailableHours
	}
	if res.Capacity <= 0 {
		res.Capacity = 1
	}
	if res.SlotDurationMinutes <= 0 {
		res.SlotDurationMinutes = 60
	}
	if res.MaxBookingHours <= 0 {
		res.MaxBookingHours = 4
	}

	if err := h.Resources.Create(c.Request().Context(), &res); err != nil {
		h.Log.Error().Err(err).Msg("resource create failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create resource"})
	}
	return c.JSON(http.StatusCreated, res)
}

// List returns resources filtered by type, status and building.
func (h *ResourceHandler) List(c echo.Context) error {
	skip, limit := pagination(c)
	f := repository.ResourceFilter{
		Type:     model.ResourceType(c.QueryParam("resource_type")),
		Status:   model.ResourceStatus(c.QueryParam("status")),
		Building: c.QueryParam("building"),
		Skip:     skip,
		Limit:    limit,
	}
	if f.Type != "" && !f.Type.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource_type"})
	}
	if f.Status != "" && !f.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ctx := c.Request().Context()
	resources, err := h.Resources.List(ctx, f)
	if err != nil {
		h.Log.Error().Err(err).Msg("resource list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list resources"})
	}
	total, err := h.Resources.Count(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list resources"})
	}
	return c.JSON(http.StatusOK, echo.Map{"resources": resources, "total": total})
}

// Search does a substring search over available resources.
func (h *ResourceHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}
	skip, limit := pagination(c)
	resources, err := h.Resources.Search(c.Request().Context(), q, skip, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("resource search failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"resources": resources, "total": len(resources)})
}

// ListAvailable returns bookable resources, optionally by type.
func (h *ResourceHandler) ListAvailable(c echo.Context) error {
	rt := model.ResourceType(c.QueryParam("resource_type"))
	if rt != "" && !rt.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid resource_type"})
	}
	skip, limit := pagination(c)
	resources, err := h.Resources.ListAvailable(c.Request().Context(), rt, skip, limit)
	if err != nil {
		h.Log.Error().Err(err).Msg("available list failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list resources"})
	}
	return c.JSON(http.StatusOK, echo.Map{"resources": resources, "total": len(resources)})
}

// Get returns one resource by id.
func (h *ResourceHandler) Get(c echo.Context) error {
	res, err := h.Resources.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load resource"})
	}
	return c.JSON(http.StatusOK, res)
}

// Update applies a partial edit to a resource.
func (h *ResourceHandler) Update(c echo.Context) error {
	var upd model.ResourceUpdate
	if err := c.Bind(&upd); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if upd.AvailableHours != nil {
		if !slot.ValidTime(upd.AvailableHours.StartTime) || !slot.ValidTime(upd.AvailableHours.EndTime) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "available_hours must use HH:MM"})
		}
	}
	res, err := h.Resources.Update(c.Request().Context(), c.Param("id"), upd)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}
	if err != nil {
		h.Log.Error().Err(err).Str("resource_id", c.Param("id")).Msg("resource update failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update resource"})
	}
	return c.JSON(http.StatusOK, res)
}

// Delete removes a resource from the catalog.
func (h *ResourceHandler) Delete(c echo.Context) error {
	err := h.Resources.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}
	if err != nil {
		h.Log.Error().Err(err).Str("resource_id", c.Param("id")).Msg("resource delete failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete resource"})
	}
	return c.NoContent(http.StatusNoContent)
}
