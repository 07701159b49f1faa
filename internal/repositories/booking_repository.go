package repositories

import (
	"context"
	"errors"
	"fmt"

	"pawatasty/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingConflict = errors.New("slot already booked")
	ErrDealSoldOut     = errors.New("deal has no remaining bookings")
)

// BookingRepository persists bookings.
type BookingRepository interface {
	// CreateForDeal inserts the booking and takes one of the deal's
	// remaining bookings in the same transaction.
	CreateForDeal(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Booking, error)
	ListByUserAndDeal(ctx context.Context, userID, dealID uint) ([]*models.Booking, error)
	// Cancel marks the booking cancelled and returns its place to the deal.
	Cancel(ctx context.Context, id uint) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreateForDeal(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var held int64
		err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND deal_id = ? AND booking_date = ? AND time_window = ? AND status <> ?",
				booking.UserID, booking.DealID, booking.BookingDate, booking.TimeWindow, models.BookingCancelled).
			Count(&held).Error
		if err != nil {
			return err
		}
		if held > 0 {
			return ErrBookingConflict
		}

		result := tx.Model(&models.Deal{}).
			Where("id = ? AND remaining_bookings > 0", booking.DealID).
			UpdateColumn("remaining_bookings", gorm.Expr("remaining_bookings - ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDealSoldOut
		}

		return tx.Create(booking).Error
	})
}

func (r *bookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("booking_date DESC, created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListByUserAndDeal(ctx context.Context, userID, dealID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deal bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Status == models.BookingCancelled {
			return nil
		}

		if err := tx.Model(&booking).Update("status", models.BookingCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.Deal{}).
			Where("id = ?", booking.DealID).
			UpdateColumn("remaining_bookings", gorm.Expr("remaining_bookings + ?", 1)).Error
	})
}
