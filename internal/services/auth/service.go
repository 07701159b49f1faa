package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/utils"
	"pawatasty/internal/utils/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("weak password")
)

// RegisterInput is the body of a sign-up request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error
	GetUserTokenVersion(ctx context.Context, userID uint) (int, error)
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
}

type service struct {
	userRepo repositories.UserRepository
	secrets  utils.TokenSecrets
}

func NewService(userRepo repositories.UserRepository, secrets utils.TokenSecrets) Service {
	return &service{
		userRepo: userRepo,
		secrets:  secrets,
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		Password:         string(hashed),
		Name:             strings.TrimSpace(input.Name),
		Phone:            input.Phone,
		SubscriptionTier: models.TierFree,
		Status:           "active",
		TokenVersion:     1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, appErrors.Conflict("email_taken", "an account with this email already exists", err)
		}
		return nil, err
	}

	log.Printf("Registered user ID: %d", user.ID)
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Printf("Login failed: User not found for identifier: %s", email)
		return nil, "", "", appErrors.Auth("invalid_credentials", "invalid credentials", ErrInvalidCredentials)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("Login failed: Incorrect password for user ID: %d", user.ID)
		return nil, "", "", appErrors.Auth("invalid_credentials", "invalid credentials", ErrInvalidCredentials)
	}
	if user.Status != "active" {
		return nil, "", "", appErrors.Auth("account_inactive", "account is not active", ErrInvalidCredentials)
	}

	accessToken, refreshToken, err := utils.GenerateTokens(claimsFor(user), s.secrets)
	if err != nil {
		log.Println("Error generating tokens:", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken, s.secrets.Refresh)
	if err != nil {
		return "", "", appErrors.Auth("invalid_refresh_token", "invalid refresh token", err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", "", appErrors.Auth("invalid_refresh_token", "invalid refresh token", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", appErrors.Auth("session_expired", "session expired", nil)
	}

	return utils.GenerateTokens(claimsFor(user), s.secrets)
}

// Logout invalidates every token issued to the user so far.
func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.userRepo.IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return appErrors.Auth("invalid_credentials", "invalid old password", ErrInvalidCredentials)
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	user.Password = string(hashedPassword)
	user.TokenVersion++ // Invalidate existing tokens

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func checkPassword(password string) error {
	if !validation.StrongPassword(password) {
		return appErrors.Validation("weak_password",
			"password must be 8 to 72 characters and contain special characters", ErrWeakPassword)
	}
	return nil
}

func claimsFor(user *models.User) *models.UserClaims {
	return &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Tier:         user.SubscriptionTier,
		TokenVersion: user.TokenVersion,
	}
}
