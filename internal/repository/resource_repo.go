package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/reservation/internal/model"
)

// ResourceFilter narrows catalog listings; zero values mean no filter.
type ResourceFilter struct {
	Type     model.ResourceType
	Status   model.ResourceStatus
	Building string
	Skip     int
	Limit    int
}

// ResourceRepo provides CRUD and search over the resources table.
// Amenities and available_days are stored as JSON text columns.
type ResourceRepo struct{ DB *sql.DB }

// NewResourceRepo returns a ResourceRepo bound to the given database.
func NewResourceRepo(db *sql.DB) *ResourceRepo { return &ResourceRepo{DB: db} }

const resourceCols = "id, name, resource_type, description, location, building, floor, capacity, amenities, available_days, open_time, close_time, slot_duration_minutes, max_booking_hours, requires_approval, status, created_at, updated_at"

func scanResource(row interface{ Scan(...any) error }) (model.Resource, error) {
	var (
		res           model.Resource
		description   sql.NullString
		building      sql.NullString
		floor         sql.NullInt64
		amenities     sql.NullString
		availableDays sql.NullString
		updatedAt     sql.NullTime
	)
	err := row.Scan(&res.ID, &res.Name, &res.ResourceType, &description, &res.Location, &building, &floor,
		&res.Capacity, &amenities, &availableDays,
		&res.AvailableHours.StartTime, &res.AvailableHours.EndTime,
		&res.SlotDurationMinutes, &res.MaxBookingHours, &res.RequiresApproval, &res.Status,
		&res.CreatedAt, &updatedAt)
	if err != nil {
		return model.Resource{}, err
	}
	if description.Valid {
		res.Description = &description.String
	}
	if building.Valid {
		res.Building = &building.String
	}
	if floor.Valid {
		f := int(floor.Int64)
		res.Floor = &f
	}
	if amenities.Valid && amenities.String != "" {
		if err := json.Unmarshal([]byte(amenities.String), &res.Amenities); err != nil {
			return model.Resource{}, err
		}
	}
	if res.Amenities == nil {
		res.Amenities = []string{}
	}
	if availableDays.Valid && availableDays.String != "" {
		if err := json.Unmarshal([]byte(availableDays.String), &res.AvailableDays); err != nil {
			return model.Resource{}, err
		}
	}
	if res.AvailableDays == nil {
		res.AvailableDays = []int{}
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		res.UpdatedAt = &t
	}
	return res, nil
}

func marshalList(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// Create inserts a resource, assigning it a fresh UUID.
func (r *ResourceRepo) Create(ctx context.Context, res *model.Resource) error {
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now().UTC()
	if res.Amenities == nil {
		res.Amenities = []string{}
	}
	if res.AvailableDays == nil {
		res.AvailableDays = []int{0, 1, 2, 3, 4}
	}
	if res.Status == "" {
		res.Status = model.ResourceAvailable
	}
	amenities, err := marshalList(res.Amenities)
	if err != nil {
		return err
	}
	days, err := marshalList(res.AvailableDays)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO resources ("+resourceCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)",
		res.ID, res.Name, string(res.ResourceType), res.Description, res.Location, res.Building, res.Floor,
		res.Capacity, amenities, days, res.AvailableHours.StartTime, res.AvailableHours.EndTime,
		res.SlotDurationMinutes, res.MaxBookingHours, res.RequiresApproval, string(res.Status),
		res.CreatedAt, nil)
	return err
}

// GetByID fetches a resource; malformed ids resolve as not found.
func (r *ResourceRepo) GetByID(ctx context.Context, id string) (model.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Resource{}, ErrNotFound
	}
	res, err := scanResource(r.DB.QueryRowContext(ctx,
		"SELECT "+resourceCols+" FROM resources WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resource{}, ErrNotFound
	}
	return res, err
}

func (f ResourceFilter) where() (string, []any) {
	conds := []string{}
	args := []any{}
	if f.Type != "" {
		conds = append(conds, "resource_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Building != "" {
		conds = append(conds, "building = ?")
		args = append(args, f.Building)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *ResourceRepo) queryList(ctx context.Context, query string, args ...any) ([]model.Resource, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// List returns resources matching the filter, ordered by name.
func (r *ResourceRepo) List(ctx context.Context, f ResourceFilter) ([]model.Resource, error) {
	where, args := f.where()
	args = append(args, f.Limit, f.Skip)
	return r.queryList(ctx,
		"SELECT "+resourceCols+" FROM resources"+where+" ORDER BY name LIMIT ? OFFSET ?", args...)
}

// Count returns the number of resources matching the filter.
func (r *ResourceRepo) Count(ctx context.Context, f ResourceFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM resources"+where, args...).Scan(&n)
	return n, err
}

// Search does a case-insensitive substring match over name, description
// and location, restricted to available resources.
func (r *ResourceRepo) Search(ctx context.Context, q string, skip, limit int) ([]model.Resource, error) {
	like := "%" + q + "%"
	return r.queryList(ctx,
		"SELECT "+resourceCols+" FROM resources WHERE status = ? AND (name LIKE ? OR description LIKE ? OR location LIKE ?) ORDER BY name LIMIT ? OFFSET ?",
		string(model.ResourceAvailable), like, like, like, limit, skip)
}

// ListAvailable returns bookable resources, optionally narrowed by type.
func (r *ResourceRepo) ListAvailable(ctx context.Context, rt model.ResourceType, skip, limit int) ([]model.Resource, error) {
	f := ResourceFilter{Type: rt, Status: model.ResourceAvailable, Skip: skip, Limit: limit}
	return r.List(ctx, f)
}

// Update applies the non-nil fields of upd and returns the result.
func (r *ResourceRepo) Update(ctx context.Context, id string, upd model.ResourceUpdate) (model.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Resource{}, ErrNotFound
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Resource{}, err
	}
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Building != nil {
		add("building", *upd.Building)
	}
	if upd.Floor != nil {
		add("floor", *upd.Floor)
	}
	if upd.Capacity != nil {
		add("capacity", *upd.Capacity)
	}
	if upd.Amenities != nil {
		s, err := marshalList(*upd.Amenities)
		if err != nil {
			return model.Resource{}, err
		}
		add("amenities", s)
	}
	if upd.AvailableDays != nil {
		s, err := marshalList(*upd.AvailableDays)
		if err != nil {
			return model.Resource{}, err
		}
		add("available_days", s)
	}
	if upd.AvailableHours != nil {
		add("open_time", upd.AvailableHours.StartTime)
		add("close_time", upd.AvailableHours.EndTime)
	}
	if upd.SlotDurationMinutes != nil {
		add("slot_duration_minutes", *upd.SlotDurationMinutes)
	}
	if upd.MaxBookingHours != nil {
		add("max_booking_hours", *upd.MaxBookingHours)
	}
	if upd.RequiresApproval != nil {
		add("requires_approval", *upd.RequiresApproval)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	args = append(args, id)
	if _, err := r.DB.ExecContext(ctx, "UPDATE resources SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return model.Resource{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a resource permanently.
func (r *ResourceRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
