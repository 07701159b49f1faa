// Package availability computes bookable deal slots from a merchant's weekly
// opening hours and a user's existing bookings.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// dayNames follows time.Weekday ordering, Sunday first.
var dayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// DayHours is a day's opening interval in minutes since midnight.
// A Close beyond 1440 means the venue closes after midnight on the next day.
type DayHours struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// CrossesMidnight reports whether the venue is still open after midnight.
func (h DayHours) CrossesMidnight() bool {
	return h.Close > minutesPerDay
}

func (h DayHours) String() string {
	return fmt.Sprintf("%s-%s", formatClock(h.Open), formatClock(h.Close))
}

// WeeklySchedule maps a weekday to its opening hours. A missing day is closed.
type WeeklySchedule map[time.Weekday]DayHours

// DefaultSchedule is used for merchants that never published opening hours.
func DefaultSchedule() WeeklySchedule {
	s := make(WeeklySchedule, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		s[d] = DayHours{Open: 12 * 60, Close: 22 * 60}
	}
	return s
}

// ParseSchedule parses opening hours such as
// "Mon-Fri: 12:00-22:00, Sat-Sun: 10:00-23:00". Segments it cannot read are
// skipped, since stored hours are not guaranteed to be well formed.
func ParseSchedule(text string) WeeklySchedule {
	s, _ := parse(text, false)
	return s
}

// ParseScheduleStrict parses like ParseSchedule but fails on the first
// malformed segment. Hours entered by merchants go through this before
// they are stored.
func ParseScheduleStrict(text string) (WeeklySchedule, error) {
	s, err := parse(text, true)
	if err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, ErrEmptySchedule
	}
	return s, nil
}

// ParseOrDefault returns DefaultSchedule for blank hours.
func ParseOrDefault(text string) WeeklySchedule {
	if strings.TrimSpace(text) == "" {
		return DefaultSchedule()
	}
	return ParseSchedule(text)
}

func parse(text string, strict bool) (WeeklySchedule, error) {
	schedule := make(WeeklySchedule)
	for _, segment := range strings.Split(text, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		days, hours, err := parseSegment(segment)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("%w: %q: %v", ErrMalformedSchedule, segment, err)
			}
			continue
		}
		for _, d := range days {
			schedule[d] = hours
		}
	}
	return schedule, nil
}

func parseSegment(segment string) ([]time.Weekday, DayHours, error) {
	idx := strings.Index(segment, ":")
	if idx < 0 {
		return nil, DayHours{}, errors.New("missing ':' between days and hours")
	}
	days, err := parseDays(strings.TrimSpace(segment[:idx]))
	if err != nil {
		return nil, DayHours{}, err
	}

	parts := strings.Split(strings.TrimSpace(segment[idx+1:]), "-")
	if len(parts) != 2 {
		return nil, DayHours{}, errors.New("hours must be open-close")
	}
	open, err := parseClock(parts[0])
	if err != nil {
		return nil, DayHours{}, err
	}
	closing, err := parseClock(parts[1])
	if err != nil {
		return nil, DayHours{}, err
	}
	// A late-night venue, e.g. 22:00-01:00, closes on the following day.
	if closing <= open {
		closing += minutesPerDay
	}
	return days, DayHours{Open: open, Close: closing}, nil
}

// parseDays resolves "Mon" or an inclusive range "Mon-Fri". Ranges wrap
// past Saturday, so "Fri-Mon" covers Friday through Monday.
func parseDays(expr string) ([]time.Weekday, error) {
	if expr == "" {
		return nil, errors.New("missing day")
	}
	if !strings.Contains(expr, "-") {
		d, err := resolveDay(expr)
		if err != nil {
			return nil, err
		}
		return []time.Weekday{d}, nil
	}

	ends := strings.SplitN(expr, "-", 2)
	from, err := resolveDay(ends[0])
	if err != nil {
		return nil, err
	}
	to, err := resolveDay(ends[1])
	if err != nil {
		return nil, err
	}
	var days []time.Weekday
	for d := from; ; d = (d + 1) % 7 {
		days = append(days, d)
		if d == to {
			break
		}
	}
	return days, nil
}

func resolveDay(name string) (time.Weekday, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, fmt.Errorf("unknown day %q", name)
	}
	for i, day := range dayNames {
		if day[:3] == name[:3] {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", name)
}

// parseClock reads "H:MM" or "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Format renders the schedule one day per segment, Sunday first, in the
// notation ParseSchedule reads.
func (s WeeklySchedule) Format() string {
	days := make([]int, 0, len(s))
	for d := range s {
		days = append(days, int(d))
	}
	sort.Ints(days)

	segments := make([]string, 0, len(days))
	for _, d := range days {
		name := dayNames[d]
		segments = append(segments, fmt.Sprintf("%s%s: %s", strings.ToUpper(name[:1]), name[1:3], s[time.Weekday(d)]))
	}
	return strings.Join(segments, ", ")
}
