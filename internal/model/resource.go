package model

import "time"

// ResourceType classifies bookable resources.
type ResourceType string

const (
	TypeLibraryDesk ResourceType = "library_desk"
	TypeStudyRoom   ResourceType = "study_room"
	TypeMeetingRoom ResourceType = "meeting_room"
	TypeOffice      ResourceType = "office"
	TypeComputerLab ResourceType = "computer_lab"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case TypeLibraryDesk, TypeStudyRoom, TypeMeetingRoom, TypeOffice, TypeComputerLab:
		return true
	}
	return false
}

// ResourceStatus is the lifecycle state of a resource in the catalog.
type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceMaintenance ResourceStatus = "maintenance"
	ResourceUnavailable ResourceStatus = "unavailable"
)

// Valid reports whether s is a known resource status.
func (s ResourceStatus) Valid() bool {
	switch s {
	case ResourceAvailable, ResourceMaintenance, ResourceUnavailable:
		return true
	}
	return false
}

// TimeSlot is a daily open window expressed as HH:MM strings.
type TimeSlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Resource describes a bookable room, desk or lab.  AvailableDays uses
// 0=Monday..6=Sunday.  RequiresApproval is stored but not enforced by the
// booking path; it is reserved for a future approval workflow.
type Resource struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	ResourceType        ResourceType   `json:"resource_type"`
	Description         *string        `json:"description"`
	Location            string         `json:"location"`
	Building            *string        `json:"building"`
	Floor               *int           `json:"floor"`
	Capacity            int            `json:"capacity"`
	Amenities           []string       `json:"amenities"`
	AvailableDays       []int          `json:"available_days"`
	AvailableHours      TimeSlot       `json:"available_hours"`
	SlotDurationMinutes int            `json:"slot_duration_minutes"`
	MaxBookingHours     int            `json:"max_booking_hours"`
	RequiresApproval    bool           `json:"requires_approval"`
	Status              ResourceStatus `json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           *time.Time     `json:"updated_at"`
}

// ResourceUpdate carries a partial catalog update; nil fields are unchanged.
type ResourceUpdate struct {
	Name                *string         `json:"name"`
	Description         *string         `json:"description"`
	Location            *string         `json:"location"`
	Building            *string         `json:"building"`
	Floor               *int            `json:"floor"`
	Capacity            *int            `json:"capacity"`
	Amenities           *[]string       `json:"amenities"`
	AvailableDays       *[]int          `json:"available_days"`
	AvailableHours      *TimeSlot       `json:"available_hours"`
	SlotDurationMinutes *int            `json:"slot_duration_minutes"`
	MaxBookingHours     *int            `json:"max_booking_hours"`
	RequiresApproval    *bool           `json:"requires_approval"`
	Status              *ResourceStatus `json:"status"`
}
