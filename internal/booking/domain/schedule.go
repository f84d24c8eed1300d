package domain

import "time"

// TimeSlot is a coarse part of the day the customer prefers.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

const dateLayout = "2006-01-02"

var slotHours = map[TimeSlot]int{
	SlotMorning:   10,
	SlotAfternoon: 14,
	SlotEvening:   18,
}

// Valid reports whether s is one of the known slots.
func (s TimeSlot) Valid() bool {
	_, ok := slotHours[s]
	return ok
}

// Hour is the representative clock hour of the slot.
func (s TimeSlot) Hour() (int, bool) {
	h, ok := slotHours[s]
	return h, ok
}

// PreferredDate combines a calendar date (YYYY-MM-DD) and a slot into one
// instant in loc. It returns nil when either part is missing or invalid.
func PreferredDate(date string, slot TimeSlot, loc *time.Location) *time.Time {
	if date == "" || slot == "" {
		return nil
	}
	hour, ok := slot.Hour()
	if !ok {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
	return &t
}

// SplitPreferredDate maps a stored instant back to a date and the slot whose
// hour is closest at or before it, in loc.
func SplitPreferredDate(t time.Time, loc *time.Location) (string, TimeSlot) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	slot := SlotMorning
	switch h := local.Hour(); {
	case h >= 18:
		slot = SlotEvening
	case h >= 14:
		slot = SlotAfternoon
	}
	return local.Format(dateLayout), slot
}
