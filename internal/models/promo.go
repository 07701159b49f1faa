package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Promo is editorial content shown to users of the listed subscription tiers.
type Promo struct {
	gorm.Model
	Title    string `gorm:"not null" json:"title"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
	// Tiers restricts the audience; empty means every tier.
	Tiers    pq.StringArray `gorm:"type:text[]" json:"tiers"`
	StartsAt *time.Time     `json:"starts_at,omitempty"`
	EndsAt   *time.Time     `json:"ends_at,omitempty"`
	Active   bool           `gorm:"default:true" json:"active"`
	Priority int            `gorm:"default:0" json:"priority"`
}

// VisibleTo reports whether the promo should be shown to a tier at t.
func (p *Promo) VisibleTo(tier string, t time.Time) bool {
	if !p.Active {
		return false
	}
	if p.StartsAt != nil && t.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !t.Before(*p.EndsAt) {
		return false
	}
	if len(p.Tiers) == 0 {
		return true
	}
	for _, allowed := range p.Tiers {
		if allowed == tier {
			return true
		}
	}
	return false
}
