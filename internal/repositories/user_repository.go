package repositories

import (
	"context"
	"errors"

	"pawatasty/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already taken")
	ErrDatabaseOperation = errors.New("database operation failed")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update updates an existing user's information
	Update(ctx context.Context, user *models.User) error

	// IncrementTokenVersion invalidates every token issued to the user
	IncrementTokenVersion(ctx context.Context, userID uint) error

	// SetStripeCustomerID records the user's customer ID at the payments processor
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}
