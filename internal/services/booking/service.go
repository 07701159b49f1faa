// Package booking creates and manages deal bookings. The server side lives
// in Service; Submitter and HTTPBookingClient are the client side that
// pre-checks a selection before calling the booking API.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/services/availability"

	"github.com/google/uuid"
)

// DealSource resolves deals and merchant hours. *merchant.Service satisfies it.
type DealSource interface {
	GetDeal(ctx context.Context, id uint) (*models.Deal, error)
	Schedule(ctx context.Context, m *models.Merchant) (availability.WeeklySchedule, error)
}

// CreateInput is the body of a booking request, as sent by Submitter.
type CreateInput struct {
	DealID          uint   `json:"dealId" validate:"required"`
	BookingDate     string `json:"bookingDate" validate:"required"`
	Guests          int    `json:"guests" validate:"omitempty,min=1,max=20"`
	SpecialRequests string `json:"specialRequests" validate:"required"`
	RestaurantID    uint   `json:"restaurantId"`
}

type Service struct {
	repo  repositories.BookingRepository
	deals DealSource
	loc   *time.Location
	now   func() time.Time
}

func NewService(repo repositories.BookingRepository, deals DealSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, deals: deals, loc: loc, now: time.Now}
}

// Create books a deal slot for the user. The selection is validated again
// against fresh data with the same checks the client ran.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Booking, error) {
	now := s.now().In(s.loc)

	deal, err := s.deals.GetDeal(ctx, in.DealID)
	if err != nil {
		return nil, err
	}
	if in.RestaurantID != 0 && in.RestaurantID != deal.MerchantID {
		return nil, appErrors.Validation("restaurant_mismatch", "restaurant does not offer this deal", nil)
	}
	if !deal.IsBookable(now) {
		return nil, appErrors.Conflict("deal_unavailable", "deal is no longer available", ErrDealUnavailable)
	}

	date, err := s.calendarDate(in.BookingDate)
	if err != nil {
		return nil, appErrors.Validation("invalid_date", "booking date must be an ISO date", err)
	}

	candidates, existing, err := s.snapshot(ctx, userID, deal, now)
	if err != nil {
		return nil, err
	}
	slot, err := availability.ValidateSelection(availability.Selection{
		Date:       date,
		TimeWindow: strings.TrimSpace(in.SpecialRequests),
	}, candidates, existing, now)
	if err != nil {
		return nil, selectionError(err)
	}

	guests := in.Guests
	if guests == 0 {
		guests = 1
	}
	booking := &models.Booking{
		Reference:   uuid.NewString(),
		UserID:      userID,
		DealID:      deal.ID,
		MerchantID:  deal.MerchantID,
		BookingDate: slot.DateString(),
		TimeWindow:  slot.TimeWindow,
		Guests:      guests,
		Status:      models.BookingConfirmed,

		SpecialRequests: in.SpecialRequests,
	}
	if err := s.repo.CreateForDeal(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBookingConflict):
			return nil, appErrors.Conflict("already_booked", "already booked, choose a different time", err)
		case errors.Is(err, repositories.ErrDealSoldOut):
			return nil, appErrors.Conflict("deal_sold_out", "deal is fully booked", err)
		}
		log.Printf("failed to create booking for user %d: %v", userID, err)
		return nil, err
	}

	log.Printf("booking %s created for user %d on %s %s", booking.Reference, userID, booking.BookingDate, booking.TimeWindow)
	return booking, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]*models.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel releases the booking's slot and returns its place to the deal.
func (s *Service) Cancel(ctx context.Context, userID, bookingID uint) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrBookingNotFound) {
			return appErrors.NotFound("booking_not_found", "booking not found", err)
		}
		return err
	}
	if booking.UserID != userID {
		return appErrors.NotFound("booking_not_found", "booking not found", repositories.ErrBookingNotFound)
	}
	if booking.Status == models.BookingCompleted {
		return appErrors.Validation("not_cancellable", "completed bookings cannot be cancelled", ErrNotCancellable)
	}
	return s.repo.Cancel(ctx, bookingID)
}

// AvailableSlots lists the deal's bookable slots for the user, per day.
func (s *Service) AvailableSlots(ctx context.Context, userID, dealID uint) ([]availability.DaySlots, error) {
	now := s.now().In(s.loc)
	deal, err := s.deals.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !deal.IsBookable(now) {
		return []availability.DaySlots{}, nil
	}

	candidates, existing, err := s.snapshot(ctx, userID, deal, now)
	if err != nil {
		return nil, err
	}
	days := availability.GroupByDay(availability.FilterAvailable(candidates, existing, now))
	if days == nil {
		days = []availability.DaySlots{}
	}
	return days, nil
}

func (s *Service) snapshot(ctx context.Context, userID uint, deal *models.Deal, now time.Time) ([]availability.CandidateSlot, []availability.ExistingBooking, error) {
	if deal.Merchant == nil {
		return nil, nil, fmt.Errorf("deal %d has no merchant loaded", deal.ID)
	}
	schedule, err := s.deals.Schedule(ctx, deal.Merchant)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.repo.ListByUserAndDeal(ctx, userID, deal.ID)
	if err != nil {
		return nil, nil, err
	}
	return availability.GenerateSlots(schedule, now, nil), ExistingBookings(rows), nil
}

// calendarDate reads a YYYY-MM-DD date or an RFC 3339 timestamp, the
// latter converted to the merchant's local date.
func (s *Service) calendarDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, s.loc); err == nil {
		return t.Format("2006-01-02"), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", err
	}
	return t.In(s.loc).Format("2006-01-02"), nil
}

// ExistingBookings projects stored bookings for conflict checks.
func ExistingBookings(rows []*models.Booking) []availability.ExistingBooking {
	out := make([]availability.ExistingBooking, 0, len(rows))
	for _, b := range rows {
		out = append(out, availability.ExistingBooking{
			CalendarDate: b.BookingDate,
			TimeWindow:   b.TimeWindow,
			DealID:       b.DealID,
			Status:       b.Status,
		})
	}
	return out
}

func selectionError(err error) error {
	switch {
	case errors.Is(err, availability.ErrMissingSelection):
		return appErrors.Validation("missing_selection", "select a day and time", err)
	case errors.Is(err, availability.ErrInvalidDay):
		return appErrors.Conflict("invalid_day", "this day is no longer available, choose a different time", err)
	case errors.Is(err, availability.ErrSlotPassed):
		return appErrors.Conflict("slot_passed", "this time has passed, choose a different time", err)
	case errors.Is(err, availability.ErrDoubleBooking):
		return appErrors.Conflict("already_booked", "already booked, choose a different time", err)
	default:
		return err
	}
}
