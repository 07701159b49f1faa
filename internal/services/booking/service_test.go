package booking

import (
	"context"
	"testing"
	"time"

	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/services/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateForDeal(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUserAndDeal(ctx context.Context, userID, dealID uint) ([]*models.Booking, error) {
	args := m.Called(ctx, userID, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type stubDeals struct {
	deal *models.Deal
}

func (s stubDeals) GetDeal(_ context.Context, id uint) (*models.Deal, error) {
	if s.deal == nil || s.deal.ID != id {
		return nil, appErrors.NotFound("deal_not_found", "deal not found", repositories.ErrDealNotFound)
	}
	return s.deal, nil
}

func (s stubDeals) Schedule(_ context.Context, m *models.Merchant) (availability.WeeklySchedule, error) {
	return availability.ParseOrDefault(m.OpeningHours), nil
}

func testDeal() *models.Deal {
	merchant := &models.Merchant{Model: gorm.Model{ID: 9}, OpeningHours: "Mon-Fri: 12:00-22:00", Status: "active"}
	return &models.Deal{
		Model:             gorm.Model{ID: 3},
		MerchantID:        9,
		Merchant:          merchant,
		Title:             "2 for 1 dinner",
		RemainingBookings: 5,
		Status:            "active",
	}
}

func newTestService(repo *MockBookingRepository, now time.Time) *Service {
	svc := NewService(repo, stubDeals{deal: testDeal()}, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreate_BooksValidSlot(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListByUserAndDeal", mock.Anything, uint(1), uint(3)).Return([]*models.Booking{}, nil)
	repo.On("CreateForDeal", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.UserID == 1 && b.DealID == 3 && b.MerchantID == 9 &&
			b.BookingDate == "2026-10-15" && b.TimeWindow == "18:00 - 21:00" &&
			b.Guests == 1 && b.Reference != ""
	})).Return(nil)

	booking, err := newTestService(repo, wednesdayMorning).Create(context.Background(), 1, CreateInput{
		DealID:          3,
		BookingDate:     "2026-10-15T00:00:00Z",
		SpecialRequests: "18:00 - 21:00",
		RestaurantID:    9,
	})

	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, booking.Status)
	repo.AssertExpectations(t)
}

func TestCreate_RecheckRejectsStaleSelection(t *testing.T) {
	tests := []struct {
		name     string
		input    CreateInput
		existing []*models.Booking
		code     string
		kind     appErrors.Kind
	}{
		{
			name:  "window missing",
			input: CreateInput{DealID: 3, BookingDate: "2026-10-15"},
			code:  "missing_selection",
			kind:  appErrors.KindValidation,
		},
		{
			name:  "closed day",
			input: CreateInput{DealID: 3, BookingDate: "2026-10-17", SpecialRequests: "13:00 - 17:00"},
			code:  "invalid_day",
			kind:  appErrors.KindConflict,
		},
		{
			name:  "window already started today",
			input: CreateInput{DealID: 3, BookingDate: "2026-10-14", SpecialRequests: "13:00 - 17:00"},
			code:  "slot_passed",
			kind:  appErrors.KindConflict,
		},
		{
			name:  "same window booked",
			input: CreateInput{DealID: 3, BookingDate: "2026-10-15", SpecialRequests: "13:00 - 17:00"},
			existing: []*models.Booking{
				{DealID: 3, BookingDate: "2026-10-15", TimeWindow: "13:00 - 17:00", Status: models.BookingConfirmed},
			},
			code: "already_booked",
			kind: appErrors.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBookingRepository)
			repo.On("ListByUserAndDeal", mock.Anything, uint(1), uint(3)).Return(tt.existing, nil)

			_, err := newTestService(repo, wednesdayMorning.Add(3*time.Hour)).Create(context.Background(), 1, tt.input)

			require.Error(t, err)
			assert.ErrorIs(t, err, &appErrors.DomainError{Code: tt.code})
			kind, _ := appErrors.KindOf(err)
			assert.Equal(t, tt.kind, kind)
			repo.AssertNotCalled(t, "CreateForDeal", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_ConcurrentInsertReportsAlreadyBooked(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListByUserAndDeal", mock.Anything, uint(1), uint(3)).Return([]*models.Booking{}, nil)
	repo.On("CreateForDeal", mock.Anything, mock.Anything).Return(repositories.ErrBookingConflict)

	_, err := newTestService(repo, wednesdayMorning).Create(context.Background(), 1, CreateInput{
		DealID: 3, BookingDate: "2026-10-15", SpecialRequests: "13:00 - 17:00",
	})

	assert.Equal(t, 409, appErrors.HTTPStatus(err))
	assert.Contains(t, appErrors.Message(err), "already booked")
}

func TestCreate_RejectsSoldOutDeal(t *testing.T) {
	repo := new(MockBookingRepository)
	deal := testDeal()
	deal.RemainingBookings = 0
	svc := NewService(repo, stubDeals{deal: deal}, time.UTC)
	svc.now = func() time.Time { return wednesdayMorning }

	_, err := svc.Create(context.Background(), 1, CreateInput{DealID: 3, BookingDate: "2026-10-15", SpecialRequests: "13:00 - 17:00"})

	assert.ErrorIs(t, err, ErrDealUnavailable)
	repo.AssertNotCalled(t, "ListByUserAndDeal", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailableSlots_CancelledBookingFreesSlot(t *testing.T) {
	booked := &models.Booking{DealID: 3, BookingDate: "2026-10-15", TimeWindow: "13:00 - 17:00", Status: models.BookingConfirmed}

	repo := new(MockBookingRepository)
	repo.On("ListByUserAndDeal", mock.Anything, uint(1), uint(3)).Return([]*models.Booking{booked}, nil).Once()
	svc := newTestService(repo, wednesdayMorning)

	days, err := svc.AvailableSlots(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, "2026-10-15", days[1].Date)
	assert.Equal(t, []string{"18:00 - 21:00"}, days[1].Windows)

	cancelled := *booked
	cancelled.Status = models.BookingCancelled
	repo.On("ListByUserAndDeal", mock.Anything, uint(1), uint(3)).Return([]*models.Booking{&cancelled}, nil).Once()

	days, err = svc.AvailableSlots(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"13:00 - 17:00", "18:00 - 21:00"}, days[1].Windows)
}

func TestCancel_OtherUsersBookingIsNotFound(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Booking{UserID: 2, Status: models.BookingConfirmed}, nil)

	err := newTestService(repo, wednesdayMorning).Cancel(context.Background(), 1, 5)

	kind, _ := appErrors.KindOf(err)
	assert.Equal(t, appErrors.KindNotFound, kind)
	repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestCancel_RestoresDeal(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("GetByID", mock.Anything, uint(5)).Return(&models.Booking{UserID: 1, Status: models.BookingConfirmed}, nil)
	repo.On("Cancel", mock.Anything, uint(5)).Return(nil)

	require.NoError(t, newTestService(repo, wednesdayMorning).Cancel(context.Background(), 1, 5))
	repo.AssertExpectations(t)
}
