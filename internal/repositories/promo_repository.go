package repositories

import (
	"context"
	"fmt"
	"time"

	"pawatasty/internal/models"

	"gorm.io/gorm"
)

// PromoRepository reads promotional content.
type PromoRepository interface {
	// ListScheduled returns active promos whose scheduling window contains t.
	ListScheduled(ctx context.Context, t time.Time) ([]*models.Promo, error)
	Create(ctx context.Context, promo *models.Promo) error
}

type promoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) ListScheduled(ctx context.Context, t time.Time) ([]*models.Promo, error) {
	var promos []*models.Promo
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", t).
		Where("ends_at IS NULL OR ends_at > ?", t).
		Order("priority DESC, created_at DESC").
		Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list promos: %w", err)
	}
	return promos, nil
}

func (r *promoRepository) Create(ctx context.Context, promo *models.Promo) error {
	return r.db.WithContext(ctx).Create(promo).Error
}
