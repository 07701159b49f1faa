package models

import (
	"gorm.io/gorm"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

type Booking struct {
	gorm.Model
	Reference  string `gorm:"uniqueIndex;not null" json:"reference"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	DealID     uint   `gorm:"not null;index" json:"deal_id"`
	MerchantID uint   `gorm:"not null" json:"restaurant_id"`
	// BookingDate is the calendar date in merchant-local time, YYYY-MM-DD.
	BookingDate string `gorm:"not null;index" json:"booking_date"`
	// TimeWindow is the catalogue window, "HH:MM - HH:MM".
	TimeWindow      string `gorm:"not null" json:"booking_time"`
	Guests          int    `gorm:"default:1" json:"guests"`
	SpecialRequests string `json:"special_requests"`
	Status          string `gorm:"default:'confirmed'" json:"status"`
}
