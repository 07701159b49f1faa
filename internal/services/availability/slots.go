package availability

import (
	"fmt"
	"strings"
	"time"
)

// Day labels for the first two day offsets; later days use the weekday name.
const (
	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"
)

// MaxDayOffset bounds how far ahead slots are offered: today plus three days.
const MaxDayOffset = 3

const dateLayout = "2006-01-02"

// Window is a named bookable time window. End is at or before Start for a
// window that crosses midnight.
type Window struct {
	Name  string
	Start int
	End   int
}

// CrossesMidnight reports whether the window ends on the next day.
func (w Window) CrossesMidnight() bool {
	return w.End <= w.Start
}

// String renders the window as "HH:MM - HH:MM", the form bookings store.
func (w Window) String() string {
	return fmt.Sprintf("%s - %s", formatClock(w.Start), formatClock(w.End))
}

// fits reports whether the window can be offered on a day with hours h.
func (w Window) fits(h DayHours) bool {
	if w.CrossesMidnight() {
		return h.CrossesMidnight()
	}
	return h.Open <= w.Start && h.Close >= w.End
}

// DefaultCatalogue is the fixed set of windows deals are booked in.
var DefaultCatalogue = []Window{
	{Name: "lunch", Start: 13 * 60, End: 17 * 60},
	{Name: "dinner", Start: 18 * 60, End: 21 * 60},
	{Name: "late-night", Start: 22 * 60, End: 1 * 60},
}

// CandidateSlot is a day and time window a user may select.
type CandidateSlot struct {
	DayLabel   string    `json:"day_label"`
	Date       time.Time `json:"date"`
	TimeWindow string    `json:"time_window"`
}

// DateString is the slot's calendar date as YYYY-MM-DD.
func (c CandidateSlot) DateString() string {
	return c.Date.Format(dateLayout)
}

// DayLabel names the day at offset days from today.
func DayLabel(offset int, date time.Time) string {
	switch offset {
	case 0:
		return LabelToday
	case 1:
		return LabelTomorrow
	default:
		return date.Weekday().String()
	}
}

// GenerateSlots lists the catalogue windows the merchant is open for, for
// today and the next MaxDayOffset days, in day then catalogue order. It
// depends only on its arguments; now's location is the merchant's local time.
// A nil catalogue means DefaultCatalogue.
func GenerateSlots(schedule WeeklySchedule, now time.Time, catalogue []Window) []CandidateSlot {
	if catalogue == nil {
		catalogue = DefaultCatalogue
	}

	today := startOfDay(now)
	var slots []CandidateSlot
	for offset := 0; offset <= MaxDayOffset; offset++ {
		date := today.AddDate(0, 0, offset)
		hours, open := schedule[date.Weekday()]
		if !open {
			continue
		}
		label := DayLabel(offset, date)
		for _, w := range catalogue {
			if w.fits(hours) {
				slots = append(slots, CandidateSlot{DayLabel: label, Date: date, TimeWindow: w.String()})
			}
		}
	}
	return slots
}

// DaySlots groups the windows offered on one day.
type DaySlots struct {
	DayLabel string   `json:"day_label"`
	Date     string   `json:"date"`
	Windows  []string `json:"windows"`
	day      time.Time
}

// GroupByDay groups slots per day, keeping their order.
func GroupByDay(slots []CandidateSlot) []DaySlots {
	var days []DaySlots
	for _, s := range slots {
		if n := len(days); n > 0 && days[n-1].day.Equal(s.Date) {
			days[n-1].Windows = append(days[n-1].Windows, s.TimeWindow)
			continue
		}
		days = append(days, DaySlots{
			DayLabel: s.DayLabel,
			Date:     s.DateString(),
			Windows:  []string{s.TimeWindow},
			day:      s.Date,
		})
	}
	return days
}

// windowStart reads the start of a "HH:MM - HH:MM" window in minutes.
func windowStart(window string) (int, error) {
	start, _, ok := strings.Cut(window, "-")
	if !ok {
		return 0, fmt.Errorf("invalid window %q", window)
	}
	return parseClock(start)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
