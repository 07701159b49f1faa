// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"log"
	"strings"

	"pawatasty/internal/models"
	"pawatasty/internal/services/auth"
	"pawatasty/internal/utils"
	"pawatasty/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the user claims to the request context.
type AuthMiddleware struct {
	authService  auth.Service
	accessSecret string
}

func NewAuthMiddleware(authService auth.Service, accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		authService:  authService,
		accessSecret: accessSecret,
	}
}

// Handler validates JWT tokens and adds claims to the request context.
// It checks for:
// - Presence of Authorization header with Bearer token
// - Valid JWT signature
// - Token expiration
// - Token version matches current user version
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}

	// Check if the header has the Bearer prefix
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString, m.accessSecret)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return response.Unauthorized(c, "invalid token")
	}

	user, err := m.authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		log.Printf("User %d from token not found", claims.UserID)
		return response.Unauthorized(c, "invalid token")
	}

	// Check if token version matches current version
	if claims.TokenVersion != user.TokenVersion {
		log.Printf("Token version mismatch for user %d. Token: %d, DB: %d",
			claims.UserID, claims.TokenVersion, user.TokenVersion)
		return response.Unauthorized(c, "session expired")
	}
	if user.Status != "active" {
		return response.Unauthorized(c, "account is not active")
	}

	// Store the claims in the context
	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	c.Locals("user", user)

	return c.Next()
}

// CurrentUserID returns the authenticated user's ID.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// CurrentUser returns the authenticated user record.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok && user != nil
}
