// Package promo selects the promotional content a user gets to see.
package promo

import (
	"context"
	"time"

	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
)

type Service struct {
	repo repositories.PromoRepository
}

func NewService(repo repositories.PromoRepository) *Service {
	return &Service{repo: repo}
}

// ActiveForTier returns the promos scheduled at now that the tier may see,
// highest priority first.
func (s *Service) ActiveForTier(ctx context.Context, tier string, now time.Time) ([]*models.Promo, error) {
	if tier == "" {
		tier = models.TierFree
	}
	scheduled, err := s.repo.ListScheduled(ctx, now)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Promo, 0, len(scheduled))
	for _, p := range scheduled {
		if p.VisibleTo(tier, now) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *Service) Create(ctx context.Context, p *models.Promo) error {
	return s.repo.Create(ctx, p)
}
