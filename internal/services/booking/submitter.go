package booking

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pawatasty/internal/services/availability"
)

// State is a step of a booking submission.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// SubmitInput is what the app knows when the user confirms a slot.
// Candidates and Bookings are the latest snapshots it holds; the server
// re-checks both.
type SubmitInput struct {
	DealID       uint
	RestaurantID uint
	Selection    availability.Selection
	Candidates   []availability.CandidateSlot
	Bookings     []availability.ExistingBooking
	Now          time.Time
}

// Outcome reports how a submission ended. Path lists every state visited.
type Outcome struct {
	State   State
	Path    []State
	Reason  string
	Booking *CreatedBooking
}

// Submitter runs the client side of booking: local guards first, then the
// booking API as the final arbiter.
type Submitter struct {
	api BookingAPI
}

func NewSubmitter(api BookingAPI) *Submitter {
	return &Submitter{api: api}
}

func (s *Submitter) Submit(ctx context.Context, in SubmitInput) Outcome {
	out := Outcome{State: StateIdle, Path: []State{StateIdle}}

	out.enter(StateValidating)
	slot, err := availability.ValidateSelection(in.Selection, in.Candidates, in.Bookings, in.Now)
	if err != nil {
		return out.fail(err.Error())
	}

	out.enter(StateSubmitting)
	created, err := s.api.CreateBooking(ctx, CreateBookingRequest{
		DealID:          in.DealID,
		BookingDate:     slot.DateString(),
		Guests:          1,
		SpecialRequests: slot.TimeWindow,
		RestaurantID:    in.RestaurantID,
	})
	if err != nil {
		return out.fail(classify(err))
	}

	out.Booking = created
	out.enter(StateSucceeded)
	return out
}

func (o *Outcome) enter(s State) {
	o.State = s
	o.Path = append(o.Path, s)
}

func (o Outcome) fail(reason string) Outcome {
	o.enter(StateFailed)
	o.Reason = reason
	return o
}

// classify turns a booking API failure into the reason shown to the user.
func classify(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || strings.Contains(msg, "unauthorized"):
			return ReasonSessionExpired
		case apiErr.StatusCode == http.StatusConflict || strings.Contains(msg, "already booked"):
			return ReasonSlotUnavailable
		default:
			return apiErr.Message
		}
	}
	if errors.Is(err, ErrConnectivity) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonConnectivity
	}
	return err.Error()
}
