// Package merchant serves merchant discovery and owns the parsed opening
// hours of each merchant.
package merchant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/services/availability"
	"pawatasty/internal/utils"
)

const scheduleTTL = 6 * time.Hour

// ScheduleCache stores parsed schedules. *cache.CacheService satisfies it.
type ScheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Detail is a merchant together with its parsed weekly hours.
type Detail struct {
	*models.Merchant
	Schedule map[string]string `json:"schedule"`
}

type Service struct {
	repo  repositories.MerchantRepository
	cache ScheduleCache
}

// NewService builds the discovery service. cache may be nil.
func NewService(repo repositories.MerchantRepository, cache ScheduleCache) *Service {
	return &Service{repo: repo, cache: cache}
}

func scheduleKey(merchantID uint) string {
	return fmt.Sprintf("schedule:%d", merchantID)
}

// List returns the page of active merchants described by page and records
// the total on it.
func (s *Service) List(ctx context.Context, category string, page *utils.Pagination) ([]*models.Merchant, error) {
	if category != "" && category != models.CategoryRestaurant && category != models.CategoryChargingStation {
		return nil, appErrors.Validation("invalid_category", "unknown merchant category", nil)
	}
	merchants, total, err := s.repo.List(ctx, category, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	page.SetTotal(total)
	return merchants, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Detail, error) {
	m, err := s.getMerchant(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule, err := s.Schedule(ctx, m)
	if err != nil {
		return nil, err
	}
	return &Detail{Merchant: m, Schedule: describe(schedule)}, nil
}

func (s *Service) ListDeals(ctx context.Context, merchantID uint) ([]*models.Deal, error) {
	if _, err := s.getMerchant(ctx, merchantID); err != nil {
		return nil, err
	}
	return s.repo.ListDeals(ctx, merchantID)
}

// GetDeal returns the deal with its merchant loaded.
func (s *Service) GetDeal(ctx context.Context, id uint) (*models.Deal, error) {
	deal, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDealNotFound) {
			return nil, appErrors.NotFound("deal_not_found", "deal not found", err)
		}
		return nil, err
	}
	if deal.Merchant == nil {
		m, err := s.getMerchant(ctx, deal.MerchantID)
		if err != nil {
			return nil, err
		}
		deal.Merchant = m
	}
	return deal, nil
}

// Schedule returns the merchant's weekly hours, reading through the cache.
// Stored hours are parsed leniently; blank hours mean the default week.
func (s *Service) Schedule(ctx context.Context, m *models.Merchant) (availability.WeeklySchedule, error) {
	key := scheduleKey(m.ID)
	if s.cache != nil {
		var cached availability.WeeklySchedule
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("schedule cache read failed for merchant %d: %v", m.ID, err)
		} else if found {
			return cached, nil
		}
	}

	schedule := availability.ParseOrDefault(m.OpeningHours)
	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, schedule, scheduleTTL); err != nil {
			log.Printf("schedule cache write failed for merchant %d: %v", m.ID, err)
		}
	}
	return schedule, nil
}

// Create stores a merchant after checking its hours strictly.
func (s *Service) Create(ctx context.Context, m *models.Merchant) error {
	if m.OpeningHours != "" {
		if _, err := availability.ParseScheduleStrict(m.OpeningHours); err != nil {
			return appErrors.Validation("invalid_hours", err.Error(), ErrInvalidHours)
		}
	}
	if m.Category == "" {
		m.Category = models.CategoryRestaurant
	}
	if m.Status == "" {
		m.Status = "active"
	}
	return s.repo.Create(ctx, m)
}

// UpdateHours replaces the merchant's hours and drops the cached schedule.
func (s *Service) UpdateHours(ctx context.Context, merchantID uint, hours string) error {
	schedule, err := availability.ParseScheduleStrict(hours)
	if err != nil {
		return appErrors.Validation("invalid_hours", err.Error(), ErrInvalidHours)
	}
	if err := s.repo.UpdateOpeningHours(ctx, merchantID, schedule.Format()); err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return appErrors.NotFound("merchant_not_found", "merchant not found", err)
		}
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, scheduleKey(merchantID)); err != nil {
			log.Printf("schedule cache invalidation failed for merchant %d: %v", merchantID, err)
		}
	}
	return nil
}

// CreateDeal adds a deal to an existing merchant.
func (s *Service) CreateDeal(ctx context.Context, deal *models.Deal) error {
	if _, err := s.getMerchant(ctx, deal.MerchantID); err != nil {
		return err
	}
	if deal.RemainingBookings < 0 {
		return appErrors.Validation("invalid_remaining", "remaining bookings cannot be negative", nil)
	}
	if deal.Status == "" {
		deal.Status = "active"
	}
	return s.repo.CreateDeal(ctx, deal)
}

func (s *Service) getMerchant(ctx context.Context, id uint) (*models.Merchant, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMerchantNotFound) {
			return nil, appErrors.NotFound("merchant_not_found", "merchant not found", err)
		}
		return nil, err
	}
	if m.Status != "active" {
		return nil, appErrors.NotFound("merchant_not_found", "merchant not found", ErrMerchantInactive)
	}
	return m, nil
}

func describe(schedule availability.WeeklySchedule) map[string]string {
	out := make(map[string]string, len(schedule))
	for day, hours := range schedule {
		out[day.String()] = hours.String()
	}
	return out
}
