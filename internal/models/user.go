package models

import (
	"gorm.io/gorm"
)

// Subscription tiers.
const (
	TierFree    = "free"
	TierPlus    = "plus"
	TierPremium = "premium"
)

type User struct {
	gorm.Model
	Email            string  `gorm:"uniqueIndex;not null" json:"email"`
	Password         string  `gorm:"not null" json:"-"`
	Name             string  `gorm:"not null" json:"name"`
	Phone            string  `json:"phone,omitempty"`
	SubscriptionTier string  `gorm:"default:'free'" json:"subscription_tier"`
	StripeCustomerID *string `gorm:"uniqueIndex" json:"stripe_customer_id,omitempty"`
	Status           string  `gorm:"default:'active'" json:"status"`
	TokenVersion     int     `gorm:"default:1" json:"token_version"`
}
