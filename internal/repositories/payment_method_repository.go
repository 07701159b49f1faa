package repositories

import (
	"context"
	"errors"

	"pawatasty/internal/models"

	"github.com/google/uuid"
)

var (
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)

// PaymentMethodRepository persists payment method records.
type PaymentMethodRepository interface {
	// Core operations
	Create(ctx context.Context, method *models.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	GetBySetupIntentID(ctx context.Context, setupIntentID string) (*models.PaymentMethod, error)
	Update(ctx context.Context, method *models.PaymentMethod) error
	// Delete removes a record outright. Only used to roll back a record
	// whose verification failed; removal by users marks it inactive.
	Delete(ctx context.Context, id uuid.UUID) error

	// Query operations
	ListByUser(ctx context.Context, userID uint, statuses ...string) ([]*models.PaymentMethod, error)
	CountActive(ctx context.Context, userID uint) (int64, error)

	// SetPrimary makes id the user's only primary record.
	SetPrimary(ctx context.Context, userID uint, id uuid.UUID) error
}
