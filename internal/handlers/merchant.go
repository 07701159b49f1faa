package handlers

import (
	"pawatasty/internal/services/merchant"
	"pawatasty/internal/utils"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type MerchantHandler struct {
	merchants *merchant.Service
}

func NewMerchantHandler(merchants *merchant.Service) *MerchantHandler {
	return &MerchantHandler{merchants: merchants}
}

// ListMerchants returns a page of active merchants, optionally of one
// ?category=. Paging uses ?page= and ?limit=.
func (h *MerchantHandler) ListMerchants(c *fiber.Ctx) error {
	page := utils.GetPagination(c, 1, 20)
	merchants, err := h.merchants.List(c.UserContext(), c.Query("category"), &page)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(utils.NewPaginatedResponse(merchants, page))
}

func (h *MerchantHandler) GetMerchant(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid merchant ID")
	}
	detail, err := h.merchants.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(detail)
}

func (h *MerchantHandler) ListDeals(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid merchant ID")
	}
	deals, err := h.merchants.ListDeals(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(deals)
}
