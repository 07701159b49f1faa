package repositories

import (
	"context"
	"errors"
	"fmt"

	"pawatasty/internal/models"

	"gorm.io/gorm"
)

var (
	ErrMerchantNotFound = errors.New("merchant not found")
	ErrDealNotFound     = errors.New("deal not found")
)

// MerchantRepository reads and writes merchants and their deals.
type MerchantRepository interface {
	// List returns one page of active merchants and the total across pages.
	List(ctx context.Context, category string, limit, offset int) ([]*models.Merchant, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Merchant, error)
	Create(ctx context.Context, merchant *models.Merchant) error
	UpdateOpeningHours(ctx context.Context, id uint, hours string) error

	GetDeal(ctx context.Context, id uint) (*models.Deal, error)
	ListDeals(ctx context.Context, merchantID uint) ([]*models.Deal, error)
	CreateDeal(ctx context.Context, deal *models.Deal) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) List(ctx context.Context, category string, limit, offset int) ([]*models.Merchant, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Merchant{}).Where("status = ?", "active")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count merchants: %w", err)
	}

	var merchants []*models.Merchant
	if err := q.Order("name").Limit(limit).Offset(offset).Find(&merchants).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list merchants: %w", err)
	}
	return merchants, total, nil
}

func (r *merchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

func (r *merchantRepository) UpdateOpeningHours(ctx context.Context, id uint, hours string) error {
	result := r.db.WithContext(ctx).Model(&models.Merchant{}).Where("id = ?", id).Update("opening_hours", hours)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

func (r *merchantRepository) GetDeal(ctx context.Context, id uint) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).Preload("Merchant").First(&deal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

func (r *merchantRepository) ListDeals(ctx context.Context, merchantID uint) ([]*models.Deal, error) {
	var deals []*models.Deal
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND status = ?", merchantID, "active").
		Order("created_at DESC").
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return deals, nil
}

func (r *merchantRepository) CreateDeal(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}
