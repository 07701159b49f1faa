package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment method types.
const (
	PaymentTypeCard       = "card"
	PaymentTypeIDEAL      = "ideal"
	PaymentTypeBancontact = "bancontact"
	PaymentTypeSEPADebit  = "sepa_debit"
	PaymentTypeApplePay   = "applepay"
	PaymentTypeGooglePay  = "googlepay"
	PaymentTypeRevolutPay = "revolut_pay"
)

// Payment method statuses.
const (
	PaymentMethodPending  = "pending"
	PaymentMethodActive   = "active"
	PaymentMethodInactive = "inactive"
)

// PaymentMethod is the local record of a payment method registered with the processor.
// Records are never hard-deleted once active; removal marks them inactive.
type PaymentMethod struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uint       `gorm:"not null;index" json:"user_id"`
	Type                    string     `gorm:"not null" json:"type"`
	LastFour                string     `json:"last_four,omitempty"`
	CardBrand               string     `json:"card_brand,omitempty"`
	ExpiryMonth             int        `json:"expiry_month,omitempty"`
	ExpiryYear              int        `json:"expiry_year,omitempty"`
	HolderName              string     `json:"cardholder_name,omitempty"`
	HolderEmail             string     `json:"email,omitempty"`
	IsPrimary               bool       `gorm:"default:false" json:"is_primary"`
	ExternalPaymentMethodID *string    `gorm:"index" json:"external_payment_method_id,omitempty"`
	ExternalSetupIntentID   *string    `gorm:"index" json:"external_setup_intent_id,omitempty"`
	Status                  string     `gorm:"not null;default:'pending';index" json:"status"`
	SupportsSubscriptions   bool       `json:"supports_subscriptions"`
	SupportsOffSession      bool       `json:"supports_off_session"`
	SupportsOneTime         bool       `json:"supports_one_time"`
	SetupCompletedAt        *time.Time `json:"setup_completed_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}
