package availability

import "time"

const statusCancelled = "cancelled"

// ExistingBooking is the part of a stored booking needed for conflict checks.
type ExistingBooking struct {
	CalendarDate string `json:"calendar_date"`
	TimeWindow   string `json:"time_window"`
	DealID       uint   `json:"deal_id"`
	Status       string `json:"status"`
}

// Blocks reports whether the booking occupies the given date and window.
// Windows come from a fixed catalogue, so equality of the window strings is
// the whole test; overlapping windows are not detected.
func (b ExistingBooking) Blocks(date, window string) bool {
	return b.Status != statusCancelled && b.CalendarDate == date && b.TimeWindow == window
}

// IsBooked reports whether any booking blocks the slot.
func IsBooked(slot CandidateSlot, bookings []ExistingBooking) bool {
	date := slot.DateString()
	for _, b := range bookings {
		if b.Blocks(date, slot.TimeWindow) {
			return true
		}
	}
	return false
}

// HasPassed reports whether a slot for today no longer starts in the
// future, at minute granularity. Slots on later days never pass.
func HasPassed(slot CandidateSlot, now time.Time) bool {
	if slot.DayLabel != LabelToday {
		return false
	}
	start, err := windowStart(slot.TimeWindow)
	if err != nil {
		return true
	}
	return start <= now.Hour()*60+now.Minute()
}

// FilterAvailable drops slots that have passed or that the user already booked.
func FilterAvailable(candidates []CandidateSlot, bookings []ExistingBooking, now time.Time) []CandidateSlot {
	available := make([]CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		if HasPassed(c, now) || IsBooked(c, bookings) {
			continue
		}
		available = append(available, c)
	}
	return available
}

// Selection is the day and window a user picked. Date, when set, identifies
// the day instead of the label; the server receives dates, clients labels.
type Selection struct {
	DayLabel   string
	Date       string
	TimeWindow string
}

func (s Selection) empty() bool {
	return (s.DayLabel == "" && s.Date == "") || s.TimeWindow == ""
}

func (s Selection) matches(c CandidateSlot) bool {
	if s.Date != "" {
		return c.DateString() == s.Date && c.TimeWindow == s.TimeWindow
	}
	return c.DayLabel == s.DayLabel && c.TimeWindow == s.TimeWindow
}

// ValidateSelection checks a selection against the current candidate list
// and bookings. Both the submitting client and the booking endpoint run it,
// so they agree on what a valid selection is. The guards run in order:
// missing selection, invalid day, slot passed, double booking.
func ValidateSelection(sel Selection, candidates []CandidateSlot, bookings []ExistingBooking, now time.Time) (CandidateSlot, error) {
	if sel.empty() {
		return CandidateSlot{}, ErrMissingSelection
	}

	var slot CandidateSlot
	found := false
	for _, c := range candidates {
		if sel.matches(c) {
			slot, found = c, true
			break
		}
	}
	if !found {
		return CandidateSlot{}, ErrInvalidDay
	}
	if HasPassed(slot, now) {
		return slot, ErrSlotPassed
	}
	if IsBooked(slot, bookings) {
		return slot, ErrDoubleBooking
	}
	return slot, nil
}
