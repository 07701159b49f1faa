package auth

import (
	"context"
	"testing"

	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	return m.Called(ctx, userID, customerID).Error(0)
}

var secrets = utils.TokenSecrets{Access: "access-secret", Refresh: "refresh-secret"}

func storedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		Model:            gorm.Model{ID: 8},
		Email:            "ana@pawatasty.nl",
		Password:         string(hash),
		Name:             "Ana",
		SubscriptionTier: models.TierPlus,
		Status:           "active",
		TokenVersion:     2,
	}
}

func TestRegister_HashesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ana@pawatasty.nl" &&
			u.SubscriptionTier == models.TierFree &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret!pass")) == nil
	})).Return(nil)

	user, err := NewService(repo, secrets).Register(context.Background(), RegisterInput{
		Email: " Ana@PawaTasty.nl", Password: "s3cret!pass", Name: "Ana",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, user.TokenVersion)
	repo.AssertExpectations(t)
}

func TestRegister_WeakPassword(t *testing.T) {
	repo := new(MockUserRepository)

	_, err := NewService(repo, secrets).Register(context.Background(), RegisterInput{Email: "a@b.nl", Password: "password", Name: "A"})

	assert.ErrorIs(t, err, ErrWeakPassword)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrEmailTaken)

	_, err := NewService(repo, secrets).Register(context.Background(), RegisterInput{Email: "a@b.nl", Password: "s3cret!pass", Name: "A"})

	assert.Equal(t, 409, appErrors.HTTPStatus(err))
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "ana@pawatasty.nl").Return(storedUser(t, "s3cret!pass"), nil)
	svc := NewService(repo, secrets)

	_, access, refresh, err := svc.Login(context.Background(), "ana@pawatasty.nl", "s3cret!pass")
	require.NoError(t, err)
	assert.NotEmpty(t, refresh)

	_, claims, err := utils.ParseToken(access, secrets.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(8), claims.UserID)
	assert.Equal(t, models.TierPlus, claims.Tier)
	assert.Equal(t, 2, claims.TokenVersion)

	_, _, _, err = svc.Login(context.Background(), "ana@pawatasty.nl", "wrong!pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 401, appErrors.HTTPStatus(err))
}

func TestRefreshTokens_RejectsAfterLogout(t *testing.T) {
	user := storedUser(t, "s3cret!pass")
	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	svc := NewService(repo, secrets)

	_, _, refresh, err := svc.Login(context.Background(), user.Email, "s3cret!pass")
	require.NoError(t, err)

	bumped := *user
	bumped.TokenVersion++
	repo.On("GetByID", mock.Anything, uint(8)).Return(&bumped, nil)

	_, _, err = svc.RefreshTokens(context.Background(), refresh)
	assert.ErrorIs(t, err, &appErrors.DomainError{Code: "session_expired"})
}

func TestGetUserTokenVersion(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("GetByID", mock.Anything, uint(8)).Return(storedUser(t, "s3cret!pass"), nil)

	v, err := NewService(repo, secrets).GetUserTokenVersion(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestChangePassword(t *testing.T) {
	t.Run("rotates hash and token version", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, uint(8)).Return(storedUser(t, "s3cret!pass"), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.TokenVersion == 3 &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("n3w!password")) == nil
		})).Return(nil)

		err := NewService(repo, secrets).ChangePassword(context.Background(), 8, "s3cret!pass", "n3w!password")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("wrong old password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, uint(8)).Return(storedUser(t, "s3cret!pass"), nil)

		err := NewService(repo, secrets).ChangePassword(context.Background(), 8, "guess!guess", "n3w!password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("weak new password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", mock.Anything, uint(8)).Return(storedUser(t, "s3cret!pass"), nil)

		err := NewService(repo, secrets).ChangePassword(context.Background(), 8, "s3cret!pass", "short")

		kind, _ := appErrors.KindOf(err)
		assert.Equal(t, appErrors.KindValidation, kind)
	})
}
