package slot

import "fmt"

// Grid bounds: a fixed hourly day grid from 08:00 to 22:00.  The grid is
// display-only and deliberately ignores per-resource slot configuration;
// the authoritative conflict check is Overlaps against the store.
const (
	gridOpenHour  = 8
	gridCloseHour = 22
)

// GridSlot is one bookable increment in the day grid.
type GridSlot struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// BuildDayGrid partitions the day into one-hour slots and marks a slot
// unavailable when any of the given active intervals covers the slot's
// start point (start <= slot.start < end).  This is narrower than the full
// overlap predicate on purpose: a booking that ends at 09:30 leaves the
// 09:00 slot marked busy and the 10:00 slot free, which is what the
// calendar view expects.
func BuildDayGrid(active []Interval) []GridSlot {
	slots := make([]GridSlot, 0, gridCloseHour-gridOpenHour)
	for hour := gridOpenHour; hour < gridCloseHour; hour++ {
		start := fmt.Sprintf("%02d:00", hour)
		end := fmt.Sprintf("%02d:00", hour+1)
		booked := false
		for _, iv := range active {
			if iv.Start <= start && iv.End > start {
				booked = true
				break
			}
		}
		slots = append(slots, GridSlot{StartTime: start, EndTime: end, IsAvailable: !booked})
	}
	return slots
}
