package handlers

import (
	"log"

	"pawatasty/internal/middleware"
	"pawatasty/internal/services/auth"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterUser creates an account on the free tier.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var input auth.RegisterInput
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	user, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return response.FromError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": fiber.Map{
			"id":                user.ID,
			"email":             user.Email,
			"name":              user.Name,
			"subscription_tier": user.SubscriptionTier,
		},
	})
}

// LoginUser handles user authentication and returns JWT tokens
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return response.FromError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":                user.ID,
			"email":             user.Email,
			"name":              user.Name,
			"subscription_tier": user.SubscriptionTier,
		},
	})
}

// RefreshToken handles token refresh requests
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(c.UserContext(), input.RefreshToken)
	if err != nil {
		log.Printf("Token refresh failed: %v", err)
		return response.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// LogoutUser invalidates all of the user's tokens.
func (h *AuthHandler) LogoutUser(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.Logout(c.UserContext(), userID); err != nil {
		log.Printf("Logout failed for user %d: %v", userID, err)
		return response.ServerError(c, "Failed to logout")
	}
	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

// ChangePassword replaces the caller's password and signs out every session.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,password"`
	}
	if ok, err := parseBody(c, &input); !ok {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, input.OldPassword, input.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password changed, please log in again"})
}
