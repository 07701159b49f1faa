package handlers

import (
	"time"

	"pawatasty/internal/middleware"
	"pawatasty/internal/services/promo"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PromoHandler struct {
	promos *promo.Service
}

func NewPromoHandler(promos *promo.Service) *PromoHandler {
	return &PromoHandler{promos: promos}
}

// ListPromos returns the promos visible to the caller's subscription tier.
func (h *PromoHandler) ListPromos(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	promos, err := h.promos.ActiveForTier(c.UserContext(), user.SubscriptionTier, time.Now())
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(promos)
}
