package models

import (
	"time"

	"gorm.io/gorm"
)

// Merchant categories.
const (
	CategoryRestaurant      = "restaurant"
	CategoryChargingStation = "charging_station"
)

// Merchant is a venue listed in discovery: a restaurant or a charging-station host.
type Merchant struct {
	gorm.Model
	Name      string  `gorm:"not null" json:"name"`
	Category  string  `gorm:"not null;default:'restaurant';index" json:"category"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// OpeningHours uses the compact day-range notation,
	// e.g. "Mon-Fri: 12:00-22:00, Sat-Sun: 10:00-23:00". Empty means the default week.
	OpeningHours string `json:"opening_hours"`
	Status       string `gorm:"default:'active'" json:"status"`
}

// Deal is a merchant offer with a bounded number of remaining bookings.
type Deal struct {
	gorm.Model
	MerchantID        uint       `gorm:"not null;index" json:"merchant_id"`
	Merchant          *Merchant  `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	Title             string     `gorm:"not null" json:"title"`
	Description       string     `json:"description"`
	RemainingBookings int        `gorm:"not null;default:0" json:"remaining_bookings"`
	ValidFrom         *time.Time `json:"valid_from,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	Status            string     `gorm:"default:'active'" json:"status"`
}

// IsBookable reports whether the deal accepts bookings at t.
func (d *Deal) IsBookable(t time.Time) bool {
	if d.Status != "active" || d.RemainingBookings <= 0 {
		return false
	}
	if d.ValidFrom != nil && t.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && !t.Before(*d.ValidUntil) {
		return false
	}
	return true
}
