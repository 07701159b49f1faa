package repositories

import (
	"context"
	"errors"
	"fmt"

	"pawatasty/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{
		db: db,
	}
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *models.PaymentMethod) error {
	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(method).Error
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

func (r *paymentMethodRepository) GetBySetupIntentID(ctx context.Context, setupIntentID string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	err := r.db.WithContext(ctx).Where("external_setup_intent_id = ?", setupIntentID).First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &method, nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, method *models.PaymentMethod) error {
	return r.db.WithContext(ctx).Save(method).Error
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentMethod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}

func (r *paymentMethodRepository) ListByUser(ctx context.Context, userID uint, statuses ...string) ([]*models.PaymentMethod, error) {
	var methods []*models.PaymentMethod
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("is_primary DESC, created_at DESC").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get user payment methods: %w", err)
	}
	return methods, nil
}

func (r *paymentMethodRepository) CountActive(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentMethod{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentMethodActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count payment methods: %w", err)
	}
	return count, nil
}

func (r *paymentMethodRepository) SetPrimary(ctx context.Context, userID uint, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Remove primary flag from all user's methods
		if err := tx.Model(&models.PaymentMethod{}).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_primary", false).Error; err != nil {
			return err
		}

		result := tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_primary", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPaymentMethodNotFound
		}
		return nil
	})
}
