package availability

import "errors"

var (
	ErrMalformedSchedule = errors.New("malformed opening hours")
	ErrEmptySchedule     = errors.New("opening hours are empty")

	// Selection guard failures, in the order they are checked.
	ErrMissingSelection = errors.New("missing selection")
	ErrInvalidDay       = errors.New("invalid day")
	ErrSlotPassed       = errors.New("slot passed")
	ErrDoubleBooking    = errors.New("double booking")
)
