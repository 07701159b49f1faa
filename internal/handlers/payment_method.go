package handlers

import (
	"errors"

	"pawatasty/internal/middleware"
	"pawatasty/internal/services/paymentmethod"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PaymentMethodHandler struct {
	service paymentmethod.Service
}

func NewPaymentMethodHandler(service paymentmethod.Service) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service}
}

// ListPaymentMethods returns the caller's active payment methods.
func (h *PaymentMethodHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	methods, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"paymentMethods": methods})
}

// CreatePaymentMethod provisions a payment method. The body's "type" picks
// the fields it must carry. Redirect types answer with requiresAction and
// the setup intent's client secret.
func (h *PaymentMethodHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := paymentmethod.Decode(c.Body())
	if err != nil {
		if errors.Is(err, paymentmethod.ErrUnsupportedType) {
			return response.BadRequest(c, "Unsupported payment method type")
		}
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.service.Provision(c.UserContext(), userID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// CompletePaymentMethod finishes a redirect method after the bank redirect.
func (h *PaymentMethodHandler) CompletePaymentMethod(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		SetupIntentID string `json:"setupIntentId" validate:"required"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	pm, err := h.service.Complete(c.UserContext(), userID, input.SetupIntentID)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"paymentMethod": pm})
}

func (h *PaymentMethodHandler) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid payment method ID")
	}

	pm, err := h.service.SetDefault(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"paymentMethod": pm})
}

func (h *PaymentMethodHandler) DeletePaymentMethod(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid payment method ID")
	}

	if err := h.service.Remove(c.UserContext(), userID, id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment method removed", nil)
}
