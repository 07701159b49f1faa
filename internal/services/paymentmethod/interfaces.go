package paymentmethod

import (
	"context"

	"pawatasty/internal/models"

	"github.com/google/uuid"
)

// State is a step of provisioning a payment method.
type State string

const (
	StateIdle                         State = "idle"
	StateProvisioning                 State = "provisioning"
	StateAwaitingExternalConfirmation State = "awaiting_external_confirmation"
	StateActive                       State = "active"
	StateRejected                     State = "rejected"
)

// ProvisionResult is the outcome of a successful Provision call. Rejections
// come back as errors.
type ProvisionResult struct {
	Method         *models.PaymentMethod `json:"paymentMethod"`
	State          State                 `json:"state"`
	RequiresAction bool                  `json:"requiresAction"`
	ClientSecret   string                `json:"clientSecret,omitempty"`
}

type Service interface {
	Provision(ctx context.Context, userID uint, req ProvisionRequest) (*ProvisionResult, error)
	// Complete finishes a redirect method once its setup intent succeeded.
	// Active methods come back unchanged and removed ones are refused.
	Complete(ctx context.Context, userID uint, setupIntentID string) (*models.PaymentMethod, error)
	List(ctx context.Context, userID uint) ([]*models.PaymentMethod, error)
	SetDefault(ctx context.Context, userID uint, id uuid.UUID) (*models.PaymentMethod, error)
	Remove(ctx context.Context, userID uint, id uuid.UUID) error
}
