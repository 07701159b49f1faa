package paymentmethod

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pawatasty/internal/models"
	"pawatasty/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) RetrievePaymentMethod(ctx context.Context, id string) (*ExternalMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExternalMethod), args.Error(1)
}

func (m *MockProcessor) AttachPaymentMethod(ctx context.Context, methodID, customerID string) error {
	return m.Called(ctx, methodID, customerID).Error(0)
}

func (m *MockProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	args := m.Called(ctx, email, name)
	return args.String(0), args.Error(1)
}

func (m *MockProcessor) CreateSetupIntent(ctx context.Context, customerID, methodType string) (*SetupIntent, error) {
	args := m.Called(ctx, customerID, methodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SetupIntent), args.Error(1)
}

func (m *MockProcessor) RetrieveSetupIntent(ctx context.Context, id string) (*SetupIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SetupIntent), args.Error(1)
}

func (m *MockProcessor) CreateSEPAPaymentMethod(ctx context.Context, iban, holderName, email string) (*ExternalMethod, error) {
	args := m.Called(ctx, iban, holderName, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ExternalMethod), args.Error(1)
}

func (m *MockProcessor) VerificationCharge(ctx context.Context, charge Charge) error {
	return m.Called(ctx, charge).Error(0)
}

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

// memoryRepo keeps payment methods in memory with the same semantics as
// the GORM repository.
type memoryRepo struct {
	mu      sync.Mutex
	methods map[uuid.UUID]models.PaymentMethod
	seq     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{methods: make(map[uuid.UUID]models.PaymentMethod)}
}

func (r *memoryRepo) Create(_ context.Context, pm *models.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pm.ID == uuid.Nil {
		pm.ID = uuid.New()
	}
	r.seq++
	pm.CreatedAt = pm.CreatedAt.AddDate(0, 0, r.seq)
	r.methods[pm.ID] = *pm
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pm, ok := r.methods[id]
	if !ok {
		return nil, repositories.ErrPaymentMethodNotFound
	}
	return &pm, nil
}

func (r *memoryRepo) GetBySetupIntentID(_ context.Context, setupIntentID string) (*models.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pm := range r.methods {
		if pm.ExternalSetupIntentID != nil && *pm.ExternalSetupIntentID == setupIntentID {
			return &pm, nil
		}
	}
	return nil, repositories.ErrPaymentMethodNotFound
}

func (r *memoryRepo) Update(_ context.Context, pm *models.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[pm.ID] = *pm
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.methods[id]; !ok {
		return repositories.ErrPaymentMethodNotFound
	}
	delete(r.methods, id)
	return nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID uint, statuses ...string) ([]*models.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PaymentMethod
	for _, pm := range r.methods {
		if pm.UserID != userID || (len(statuses) > 0 && !contains(statuses, pm.Status)) {
			continue
		}
		pm := pm
		out = append(out, &pm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepo) CountActive(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, pm := range r.methods {
		if pm.UserID == userID && pm.Status == models.PaymentMethodActive {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) SetPrimary(_ context.Context, userID uint, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pm, ok := r.methods[id]; !ok || pm.UserID != userID {
		return repositories.ErrPaymentMethodNotFound
	}
	for key, pm := range r.methods {
		if pm.UserID == userID {
			pm.IsPrimary = key == id
			r.methods[key] = pm
		}
	}
	return nil
}

func (r *memoryRepo) all(userID uint) []models.PaymentMethod {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentMethod
	for _, pm := range r.methods {
		if pm.UserID == userID {
			out = append(out, pm)
		}
	}
	return out
}

// primaryFailRepo is a memoryRepo whose primary flip always fails.
type primaryFailRepo struct {
	*memoryRepo
}

func (r primaryFailRepo) SetPrimary(context.Context, uint, uuid.UUID) error {
	return errPrimaryFlip
}

var errPrimaryFlip = errors.New("connection reset during primary flip")

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
