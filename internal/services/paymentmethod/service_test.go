package paymentmethod

import (
	"context"
	"testing"
	"time"

	"pawatasty/internal/config"
	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserID uint = 4

func testConfig() config.PaymentConfig {
	enabled := make(map[string]bool)
	for _, t := range config.AllPaymentTypes {
		enabled[t] = true
	}
	return config.PaymentConfig{
		EnabledTypes:       enabled,
		VerificationCharge: true,
		VerificationAmount: 1,
		Currency:           "eur",
		ProcessorTimeout:   time.Second,
	}
}

type fixture struct {
	repo      *memoryRepo
	users     *MockUserRepository
	processor *MockProcessor
	svc       Service
}

func newFixture(t *testing.T, cfg config.PaymentConfig) *fixture {
	t.Helper()
	customer := "cus_123"
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, testUserID).Return(&models.User{
		Model:            gorm.Model{ID: testUserID},
		Email:            "ana@pawatasty.nl",
		Name:             "Ana",
		StripeCustomerID: &customer,
	}, nil)

	f := &fixture{
		repo:      newMemoryRepo(),
		users:     users,
		processor: new(MockProcessor),
	}
	f.svc = NewService(f.repo, f.users, f.processor, cfg, nil)
	return f
}

func (f *fixture) expectCard(token string) {
	f.processor.On("RetrievePaymentMethod", mock.Anything, token).Return(&ExternalMethod{
		ID: token, Type: "card", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030,
	}, nil)
	f.processor.On("AttachPaymentMethod", mock.Anything, token, "cus_123").Return(nil)
}

func TestProvision_CardDeclinedVerificationRollsBack(t *testing.T) {
	f := newFixture(t, testConfig())
	f.expectCard("pm_stolen")
	f.processor.On("VerificationCharge", mock.Anything, mock.MatchedBy(func(c Charge) bool {
		return c.PaymentMethodID == "pm_stolen" && c.Amount == 1 && c.Currency == "eur"
	})).Return(&ProcessorError{Code: "card_declined", Message: "Your card was declined."})

	result, err := f.svc.Provision(context.Background(), testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_stolen"})

	assert.Nil(t, result)
	kind, _ := appErrors.KindOf(err)
	assert.Equal(t, appErrors.KindExternalProcessor, kind)
	assert.Equal(t, "Your card was declined.", appErrors.Message(err))
	assert.Empty(t, f.repo.all(testUserID))
}

func TestProvision_FirstMethodIsAlwaysPrimary(t *testing.T) {
	f := newFixture(t, testConfig())
	f.expectCard("pm_first")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)

	result, err := f.svc.Provision(context.Background(), testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})

	require.NoError(t, err)
	assert.Equal(t, StateActive, result.State)
	assert.True(t, result.Method.IsPrimary)
	assert.Equal(t, "4242", result.Method.LastFour)
	assert.Equal(t, "visa", result.Method.CardBrand)
	assert.True(t, result.Method.SupportsOffSession)

	stored, err := f.repo.GetByID(context.Background(), result.Method.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPrimary)
	assert.Equal(t, models.PaymentMethodActive, stored.Status)
}

func TestProvision_FailedPrimaryFlipLeavesNoRecord(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.expectCard("pm_card")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(primaryFailRepo{f.repo}, f.users, f.processor, testConfig(), nil)

	_, err := svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_card"})

	assert.ErrorIs(t, err, errPrimaryFlip)
	assert.Empty(t, f.repo.all(testUserID))
}

func TestProvision_NewPrimaryDemotesPrevious(t *testing.T) {
	f := newFixture(t, testConfig())
	f.expectCard("pm_first")
	f.expectCard("pm_second")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	first, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})
	require.NoError(t, err)
	second, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "applepay", PaymentMethodID: "pm_second", IsPrimary: true})
	require.NoError(t, err)

	got, _ := f.repo.GetByID(ctx, first.Method.ID)
	assert.False(t, got.IsPrimary)
	got, _ = f.repo.GetByID(ctx, second.Method.ID)
	assert.True(t, got.IsPrimary)
}

func TestProvision_SecondMethodWithoutFlagStaysSecondary(t *testing.T) {
	f := newFixture(t, testConfig())
	f.expectCard("pm_first")
	f.expectCard("pm_second")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	first, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})
	require.NoError(t, err)
	second, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_second"})
	require.NoError(t, err)

	assert.False(t, second.Method.IsPrimary)
	got, _ := f.repo.GetByID(ctx, first.Method.ID)
	assert.True(t, got.IsPrimary)
}

func TestProvision_SEPA(t *testing.T) {
	f := newFixture(t, testConfig())
	f.processor.On("CreateSEPAPaymentMethod", mock.Anything, "NL91ABNA0417164300", "Ana de Vries", "ana@pawatasty.nl").
		Return(&ExternalMethod{ID: "pm_sepa", Type: "sepa_debit", Last4: "4300"}, nil)
	f.processor.On("AttachPaymentMethod", mock.Anything, "pm_sepa", "cus_123").Return(nil)
	f.processor.On("VerificationCharge", mock.Anything, mock.MatchedBy(func(c Charge) bool {
		return c.MethodType == models.PaymentTypeSEPADebit
	})).Return(nil)

	result, err := f.svc.Provision(context.Background(), testUserID, SEPARequest{IBAN: "nl91 abna 0417 1643 00", HolderName: "Ana de Vries"})

	require.NoError(t, err)
	assert.Equal(t, "4300", result.Method.LastFour)
	assert.True(t, result.Method.SupportsSubscriptions)
	assert.False(t, result.Method.SupportsOneTime)
}

func TestProvision_InvalidIBANNeverReachesProcessor(t *testing.T) {
	f := newFixture(t, testConfig())

	_, err := f.svc.Provision(context.Background(), testUserID, SEPARequest{IBAN: "NL00ABNA0417164300", HolderName: "Ana"})

	assert.ErrorIs(t, err, ErrInvalidIBAN)
	assert.Equal(t, "IBAN invalid", appErrors.Message(err))
	f.processor.AssertNotCalled(t, "CreateSEPAPaymentMethod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_DisabledType(t *testing.T) {
	cfg := testConfig()
	cfg.EnabledTypes = map[string]bool{"card": true}
	f := newFixture(t, cfg)

	_, err := f.svc.Provision(context.Background(), testUserID, RedirectRequest{Type: "ideal", HolderName: "Ana"})

	assert.ErrorIs(t, err, ErrTypeDisabled)
	assert.Equal(t, 400, appErrors.HTTPStatus(err))
	f.processor.AssertNotCalled(t, "CreateSetupIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_VerificationChargeCanBeSwitchedOff(t *testing.T) {
	cfg := testConfig()
	cfg.VerificationCharge = false
	f := newFixture(t, cfg)
	f.expectCard("pm_first")

	_, err := f.svc.Provision(context.Background(), testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})

	require.NoError(t, err)
	f.processor.AssertNotCalled(t, "VerificationCharge", mock.Anything, mock.Anything)
}

func TestProvision_CreatesCustomerOnFirstUse(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, testUserID).Return(&models.User{Model: gorm.Model{ID: testUserID}, Email: "ana@pawatasty.nl", Name: "Ana"}, nil)
	users.On("SetStripeCustomerID", mock.Anything, testUserID, "cus_new").Return(nil)
	processor := new(MockProcessor)
	processor.On("CreateCustomer", mock.Anything, "ana@pawatasty.nl", "Ana").Return("cus_new", nil)
	processor.On("CreateSetupIntent", mock.Anything, "cus_new", "bancontact").Return(&SetupIntent{ID: "seti_1", ClientSecret: "secret"}, nil)

	svc := NewService(newMemoryRepo(), users, processor, testConfig(), nil)
	_, err := svc.Provision(context.Background(), testUserID, RedirectRequest{Type: "bancontact", HolderName: "Ana"})

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestIDEAL_PendingUntilSetupIntentSucceeds(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.processor.On("CreateSetupIntent", mock.Anything, "cus_123", "ideal").
		Return(&SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret", Status: "requires_payment_method"}, nil)

	result, err := f.svc.Provision(ctx, testUserID, RedirectRequest{Type: "ideal", HolderName: "Ana"})
	require.NoError(t, err)
	assert.True(t, result.RequiresAction)
	assert.Equal(t, "seti_1_secret", result.ClientSecret)
	assert.Equal(t, StateAwaitingExternalConfirmation, result.State)
	assert.Equal(t, models.PaymentMethodPending, result.Method.Status)
	assert.False(t, result.Method.SupportsOffSession)

	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_1").
		Return(&SetupIntent{ID: "seti_1", Status: "requires_action"}, nil).Once()
	_, err = f.svc.Complete(ctx, testUserID, "seti_1")
	assert.ErrorIs(t, err, ErrSetupIncomplete)
	stored, _ := f.repo.GetByID(ctx, result.Method.ID)
	assert.Equal(t, models.PaymentMethodPending, stored.Status)

	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_1").
		Return(&SetupIntent{ID: "seti_1", Status: SetupIntentSucceeded, PaymentMethodID: "pm_ideal"}, nil).Once()
	completed, err := f.svc.Complete(ctx, testUserID, "seti_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodActive, completed.Status)
	assert.NotNil(t, completed.SetupCompletedAt)
	assert.Equal(t, "pm_ideal", *completed.ExternalPaymentMethodID)
	assert.True(t, completed.IsPrimary)
	assert.True(t, completed.SupportsOffSession)
}

func TestComplete_RemovedPendingMethodStaysRemoved(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.expectCard("pm_card")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	card, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_card"})
	require.NoError(t, err)

	f.processor.On("CreateSetupIntent", mock.Anything, "cus_123", "ideal").Return(&SetupIntent{ID: "seti_x", ClientSecret: "s"}, nil)
	ideal, err := f.svc.Provision(ctx, testUserID, RedirectRequest{Type: "ideal", HolderName: "Ana", IsPrimary: true})
	require.NoError(t, err)
	require.NoError(t, f.svc.Remove(ctx, testUserID, ideal.Method.ID))

	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_x").Return(&SetupIntent{ID: "seti_x", Status: SetupIntentSucceeded, PaymentMethodID: "pm_ideal"}, nil)
	_, err = f.svc.Complete(ctx, testUserID, "seti_x")

	assert.ErrorIs(t, err, ErrMethodRemoved)
	kind, _ := appErrors.KindOf(err)
	assert.Equal(t, appErrors.KindValidation, kind)
	f.processor.AssertNotCalled(t, "RetrieveSetupIntent", mock.Anything, "seti_x")

	removed, _ := f.repo.GetByID(ctx, ideal.Method.ID)
	assert.Equal(t, models.PaymentMethodInactive, removed.Status)
	assert.False(t, removed.IsPrimary)
	stored, _ := f.repo.GetByID(ctx, card.Method.ID)
	assert.True(t, stored.IsPrimary)
}

func TestComplete_ActiveMethodIsReturnedUnchanged(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.processor.On("CreateSetupIntent", mock.Anything, "cus_123", "bancontact").Return(&SetupIntent{ID: "seti_b", ClientSecret: "s"}, nil)
	_, err := f.svc.Provision(ctx, testUserID, RedirectRequest{Type: "bancontact", HolderName: "Ana"})
	require.NoError(t, err)
	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_b").Return(&SetupIntent{ID: "seti_b", Status: SetupIntentSucceeded, PaymentMethodID: "pm_b"}, nil).Once()

	first, err := f.svc.Complete(ctx, testUserID, "seti_b")
	require.NoError(t, err)
	again, err := f.svc.Complete(ctx, testUserID, "seti_b")
	require.NoError(t, err)

	assert.Equal(t, first.SetupCompletedAt, again.SetupCompletedAt)
	f.processor.AssertNumberOfCalls(t, "RetrieveSetupIntent", 1)
}

func TestComplete_PrimaryRedirectDemotesOthers(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.expectCard("pm_card")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	card, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_card"})
	require.NoError(t, err)

	f.processor.On("CreateSetupIntent", mock.Anything, "cus_123", "ideal").Return(&SetupIntent{ID: "seti_2", ClientSecret: "s"}, nil)
	_, err = f.svc.Provision(ctx, testUserID, RedirectRequest{Type: "ideal", HolderName: "Ana", IsPrimary: true})
	require.NoError(t, err)

	stored, _ := f.repo.GetByID(ctx, card.Method.ID)
	assert.True(t, stored.IsPrimary, "pending method must not demote the card yet")

	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_2").Return(&SetupIntent{ID: "seti_2", Status: SetupIntentSucceeded, PaymentMethodID: "pm_ideal"}, nil)
	_, err = f.svc.Complete(ctx, testUserID, "seti_2")
	require.NoError(t, err)

	stored, _ = f.repo.GetByID(ctx, card.Method.ID)
	assert.False(t, stored.IsPrimary)
}

func TestComplete_FailedPrimaryFlipStaysPending(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.processor.On("CreateSetupIntent", mock.Anything, "cus_123", "ideal").Return(&SetupIntent{ID: "seti_3", ClientSecret: "s"}, nil)
	f.processor.On("RetrieveSetupIntent", mock.Anything, "seti_3").Return(&SetupIntent{ID: "seti_3", Status: SetupIntentSucceeded, PaymentMethodID: "pm_ideal"}, nil)
	result, err := f.svc.Provision(ctx, testUserID, RedirectRequest{Type: "ideal", HolderName: "Ana"})
	require.NoError(t, err)

	failing := NewService(primaryFailRepo{f.repo}, f.users, f.processor, testConfig(), nil)
	_, err = failing.Complete(ctx, testUserID, "seti_3")
	assert.ErrorIs(t, err, errPrimaryFlip)

	stored, _ := f.repo.GetByID(ctx, result.Method.ID)
	assert.Equal(t, models.PaymentMethodPending, stored.Status)
	assert.Nil(t, stored.SetupCompletedAt)
	count, _ := f.repo.CountActive(ctx, testUserID)
	assert.Zero(t, count)

	completed, err := f.svc.Complete(ctx, testUserID, "seti_3")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodActive, completed.Status)
	assert.True(t, completed.IsPrimary)
}

func TestRemove_PromotesAnotherActiveMethod(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.expectCard("pm_first")
	f.expectCard("pm_second")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	first, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})
	require.NoError(t, err)
	second, err := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_second"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, testUserID, first.Method.ID))

	removed, _ := f.repo.GetByID(ctx, first.Method.ID)
	assert.Equal(t, models.PaymentMethodInactive, removed.Status)
	assert.False(t, removed.IsPrimary)
	promoted, _ := f.repo.GetByID(ctx, second.Method.ID)
	assert.True(t, promoted.IsPrimary)

	listed, err := f.svc.List(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.Method.ID, listed[0].ID)
}

func TestSetDefault(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.expectCard("pm_first")
	f.expectCard("pm_second")
	f.processor.On("VerificationCharge", mock.Anything, mock.Anything).Return(nil)
	first, _ := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_first"})
	second, _ := f.svc.Provision(ctx, testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_second"})

	pm, err := f.svc.SetDefault(ctx, testUserID, second.Method.ID)
	require.NoError(t, err)
	assert.True(t, pm.IsPrimary)
	got, _ := f.repo.GetByID(ctx, first.Method.ID)
	assert.False(t, got.IsPrimary)

	_, err = f.svc.SetDefault(ctx, testUserID+1, first.Method.ID)
	kind, _ := appErrors.KindOf(err)
	assert.Equal(t, appErrors.KindNotFound, kind)
}

func TestProvision_ProcessorTimeoutIsTransient(t *testing.T) {
	f := newFixture(t, testConfig())
	f.processor.On("RetrievePaymentMethod", mock.Anything, "pm_slow").Return(nil, context.DeadlineExceeded)

	_, err := f.svc.Provision(context.Background(), testUserID, TokenizedRequest{Type: "card", PaymentMethodID: "pm_slow"})

	kind, _ := appErrors.KindOf(err)
	assert.Equal(t, appErrors.KindTransient, kind)
}
