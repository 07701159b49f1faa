package handlers

import (
	"pawatasty/internal/middleware"
	"pawatasty/internal/services/booking"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookings *booking.Service
}

func NewBookingHandler(bookings *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateBooking books a deal slot. A slot that is no longer free answers
// 409 with "already booked" in the message.
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input booking.CreateInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	created, err := h.bookings.Create(c.UserContext(), userID, input)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookings, err := h.bookings.ListForUser(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}

	if err := h.bookings.Cancel(c.UserContext(), userID, id); err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Booking cancelled"})
}

// AvailableSlots lists the deal's bookable slots for the caller.
func (h *BookingHandler) AvailableSlots(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	dealID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid deal ID")
	}

	days, err := h.bookings.AvailableSlots(c.UserContext(), userID, dealID)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"days": days})
}
