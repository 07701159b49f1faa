// Package paymentmethod registers users' payment methods with the payments
// processor and keeps the local records and primary flag consistent.
package paymentmethod

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pawatasty/internal/config"
	appErrors "pawatasty/internal/errors"
	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/utils/validation"

	"github.com/google/uuid"
)

type service struct {
	repo      repositories.PaymentMethodRepository
	users     repositories.UserRepository
	processor Processor
	cfg       config.PaymentConfig
	metrics   MetricsCollector
	now       func() time.Time
}

func NewService(
	repo repositories.PaymentMethodRepository,
	users repositories.UserRepository,
	processor Processor,
	cfg config.PaymentConfig,
	metrics MetricsCollector,
) Service {
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if cfg.ProcessorTimeout <= 0 {
		cfg.ProcessorTimeout = 15 * time.Second
	}
	if cfg.VerificationAmount <= 0 {
		cfg.VerificationAmount = 1
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &service{
		repo:      repo,
		users:     users,
		processor: processor,
		cfg:       cfg,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (s *service) Provision(ctx context.Context, userID uint, req ProvisionRequest) (*ProvisionResult, error) {
	methodType := req.PaymentType()
	if !s.cfg.EnabledTypes[methodType] {
		s.metrics.RecordProvisionResult(methodType, "disabled")
		return nil, appErrors.Validation("payment_type_disabled",
			fmt.Sprintf("%s payments are not available", methodType), ErrTypeDisabled)
	}
	if err := validation.Struct(req); err != nil {
		s.metrics.RecordProvisionResult(methodType, "invalid")
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field == "iban" {
					return nil, appErrors.Validation("invalid_iban", "IBAN invalid", ErrInvalidIBAN)
				}
			}
		}
		return nil, appErrors.Validation("invalid_request", err.Error(), err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	priorActive, err := s.repo.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	primary := req.WantsPrimary() || priorActive == 0

	var result *ProvisionResult
	switch r := req.(type) {
	case TokenizedRequest:
		result, err = s.provisionTokenized(ctx, user, r, primary)
	case SEPARequest:
		result, err = s.provisionSEPA(ctx, user, r, primary)
	case RedirectRequest:
		result, err = s.provisionRedirect(ctx, user, r, primary)
	default:
		err = appErrors.Validation("unsupported_type", "unsupported payment method type", ErrUnsupportedType)
	}
	if err != nil {
		s.metrics.RecordProvisionResult(methodType, string(StateRejected))
		return nil, err
	}

	s.metrics.RecordProvisionResult(methodType, string(result.State))
	log.Printf("payment method %s (%s) provisioned for user %d: %s", result.Method.ID, methodType, userID, result.State)
	return result, nil
}

func (s *service) provisionTokenized(ctx context.Context, user *models.User, r TokenizedRequest, primary bool) (*ProvisionResult, error) {
	var ext *ExternalMethod
	err := s.call(ctx, "retrieve_payment_method", func(ctx context.Context) error {
		var err error
		ext, err = s.processor.RetrievePaymentMethod(ctx, r.PaymentMethodID)
		return err
	})
	if err != nil {
		return nil, processorFailure("invalid_payment_method", "payment method could not be validated", err)
	}
	if ext.Type != stripeMethodType(r.Type) {
		return nil, appErrors.Validation("token_type_mismatch", "payment method does not match the selected type", ErrTokenTypeMismatch)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, ext.ID, customerID); err != nil {
		return nil, err
	}

	pm := &models.PaymentMethod{
		UserID:                  user.ID,
		Type:                    r.Type,
		LastFour:                ext.Last4,
		CardBrand:               ext.Brand,
		ExpiryMonth:             ext.ExpMonth,
		ExpiryYear:              ext.ExpYear,
		HolderName:              user.Name,
		HolderEmail:             user.Email,
		ExternalPaymentMethodID: &ext.ID,
	}
	return s.activate(ctx, pm, customerID, primary)
}

func (s *service) provisionSEPA(ctx context.Context, user *models.User, r SEPARequest, primary bool) (*ProvisionResult, error) {
	iban := NormalizeIBAN(r.IBAN)
	if !ValidIBAN(iban) {
		return nil, appErrors.Validation("invalid_iban", "IBAN invalid", ErrInvalidIBAN)
	}
	email := r.Email
	if email == "" {
		email = user.Email
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	var ext *ExternalMethod
	err = s.call(ctx, "create_sepa_payment_method", func(ctx context.Context) error {
		var err error
		ext, err = s.processor.CreateSEPAPaymentMethod(ctx, iban, r.HolderName, email)
		return err
	})
	if err != nil {
		return nil, processorFailure("sepa_rejected", "bank account could not be registered", err)
	}
	if err := s.attach(ctx, ext.ID, customerID); err != nil {
		return nil, err
	}

	last4 := ext.Last4
	if last4 == "" {
		last4 = iban[len(iban)-4:]
	}
	pm := &models.PaymentMethod{
		UserID:                  user.ID,
		Type:                    models.PaymentTypeSEPADebit,
		LastFour:                last4,
		HolderName:              r.HolderName,
		HolderEmail:             email,
		ExternalPaymentMethodID: &ext.ID,
	}
	return s.activate(ctx, pm, customerID, primary)
}

func (s *service) provisionRedirect(ctx context.Context, user *models.User, r RedirectRequest, primary bool) (*ProvisionResult, error) {
	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	var si *SetupIntent
	err = s.call(ctx, "create_setup_intent", func(ctx context.Context) error {
		var err error
		si, err = s.processor.CreateSetupIntent(ctx, customerID, r.Type)
		return err
	})
	if err != nil {
		return nil, processorFailure("setup_intent_failed", "payment method setup could not be started", err)
	}

	email := r.Email
	if email == "" {
		email = user.Email
	}
	pm := &models.PaymentMethod{
		UserID:                user.ID,
		Type:                  r.Type,
		HolderName:            r.HolderName,
		HolderEmail:           email,
		IsPrimary:             primary,
		ExternalSetupIntentID: &si.ID,
		Status:                models.PaymentMethodPending,
	}
	CapabilitiesFor(r.Type, false).apply(pm)
	if err := s.repo.Create(ctx, pm); err != nil {
		log.Printf("failed to store pending payment method for setup intent %s: %v", si.ID, err)
		return nil, err
	}

	return &ProvisionResult{
		Method:         pm,
		State:          StateAwaitingExternalConfirmation,
		RequiresAction: true,
		ClientSecret:   si.ClientSecret,
	}, nil
}

// activate stores a processor-attached method, proves it chargeable and
// then settles the primary flag. A declined verification removes the record.
func (s *service) activate(ctx context.Context, pm *models.PaymentMethod, customerID string, primary bool) (*ProvisionResult, error) {
	pm.Status = models.PaymentMethodActive
	CapabilitiesFor(pm.Type, true).apply(pm)
	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, err
	}

	if s.cfg.VerificationCharge {
		err := s.call(ctx, "verification_charge", func(ctx context.Context) error {
			return s.processor.VerificationCharge(ctx, Charge{
				CustomerID:      customerID,
				PaymentMethodID: *pm.ExternalPaymentMethodID,
				MethodType:      pm.Type,
				Amount:          s.cfg.VerificationAmount,
				Currency:        s.cfg.Currency,
			})
		})
		if err != nil {
			s.discard(ctx, pm)
			return nil, processorFailure("verification_rejected", "Your payment method was declined", err)
		}
	}

	if primary {
		if err := s.repo.SetPrimary(ctx, pm.UserID, pm.ID); err != nil {
			s.discard(ctx, pm)
			return nil, err
		}
		pm.IsPrimary = true
	}
	return &ProvisionResult{Method: pm, State: StateActive}, nil
}

// discard removes a record whose activation did not finish.
func (s *service) discard(ctx context.Context, pm *models.PaymentMethod) {
	if err := s.repo.Delete(ctx, pm.ID); err != nil {
		log.Printf("failed to roll back payment method %s: %v", pm.ID, err)
	}
}

func (s *service) Complete(ctx context.Context, userID uint, setupIntentID string) (*models.PaymentMethod, error) {
	if setupIntentID == "" {
		return nil, appErrors.Validation("missing_setup_intent", "setupIntentId is required", nil)
	}
	pm, err := s.repo.GetBySetupIntentID(ctx, setupIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, appErrors.NotFound("payment_method_not_found", "payment method not found", err)
		}
		return nil, err
	}
	if pm.UserID != userID {
		return nil, appErrors.NotFound("payment_method_not_found", "payment method not found", repositories.ErrPaymentMethodNotFound)
	}
	switch pm.Status {
	case models.PaymentMethodActive:
		return pm, nil
	case models.PaymentMethodPending:
	default:
		return nil, appErrors.Validation("payment_method_removed", "payment method was removed", ErrMethodRemoved)
	}

	var si *SetupIntent
	err = s.call(ctx, "retrieve_setup_intent", func(ctx context.Context) error {
		var err error
		si, err = s.processor.RetrieveSetupIntent(ctx, setupIntentID)
		return err
	})
	if err != nil {
		return nil, processorFailure("setup_intent_unavailable", "payment method setup could not be checked", err)
	}
	if si.Status != SetupIntentSucceeded {
		return nil, appErrors.External("setup_incomplete",
			fmt.Sprintf("payment method setup is not complete (%s)", si.Status), ErrSetupIncomplete)
	}

	priorActive, err := s.repo.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := *pm
	completedAt := s.now()
	pm.Status = models.PaymentMethodActive
	pm.SetupCompletedAt = &completedAt
	if si.PaymentMethodID != "" {
		pm.ExternalPaymentMethodID = &si.PaymentMethodID
	}
	CapabilitiesFor(pm.Type, true).apply(pm)
	primary := pm.IsPrimary || priorActive == 0
	pm.IsPrimary = false
	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, err
	}
	if primary {
		if err := s.repo.SetPrimary(ctx, userID, pm.ID); err != nil {
			// Back to pending so the callback can complete it again.
			if revertErr := s.repo.Update(ctx, &pending); revertErr != nil {
				log.Printf("failed to revert payment method %s to pending: %v", pm.ID, revertErr)
			}
			return nil, err
		}
		pm.IsPrimary = true
	}

	s.metrics.RecordProvisionResult(pm.Type, string(StateActive))
	return pm, nil
}

func (s *service) List(ctx context.Context, userID uint) ([]*models.PaymentMethod, error) {
	return s.repo.ListByUser(ctx, userID, models.PaymentMethodActive)
}

func (s *service) SetDefault(ctx context.Context, userID uint, id uuid.UUID) (*models.PaymentMethod, error) {
	pm, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if pm.Status != models.PaymentMethodActive {
		return nil, appErrors.Validation("payment_method_inactive", "only active payment methods can be the default", ErrMethodNotActive)
	}
	if err := s.repo.SetPrimary(ctx, userID, pm.ID); err != nil {
		return nil, err
	}
	pm.IsPrimary = true
	return pm, nil
}

// Remove deactivates the method. The record is kept; if it was the
// primary one, the most recent remaining active method takes over.
func (s *service) Remove(ctx context.Context, userID uint, id uuid.UUID) error {
	pm, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if pm.Status == models.PaymentMethodInactive {
		return nil
	}

	wasPrimary := pm.IsPrimary
	pm.Status = models.PaymentMethodInactive
	pm.IsPrimary = false
	if err := s.repo.Update(ctx, pm); err != nil {
		return err
	}
	if !wasPrimary {
		return nil
	}

	remaining, err := s.repo.ListByUser(ctx, userID, models.PaymentMethodActive)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return nil
	}
	return s.repo.SetPrimary(ctx, userID, remaining[0].ID)
}

func (s *service) owned(ctx context.Context, userID uint, id uuid.UUID) (*models.PaymentMethod, error) {
	pm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, appErrors.NotFound("payment_method_not_found", "payment method not found", err)
		}
		return nil, err
	}
	if pm.UserID != userID {
		return nil, appErrors.NotFound("payment_method_not_found", "payment method not found", repositories.ErrPaymentMethodNotFound)
	}
	return pm, nil
}

// ensureCustomer returns the user's processor customer, creating and
// storing one on first use.
func (s *service) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	var customerID string
	err := s.call(ctx, "create_customer", func(ctx context.Context) error {
		var err error
		customerID, err = s.processor.CreateCustomer(ctx, user.Email, user.Name)
		return err
	})
	if err != nil {
		return "", processorFailure("customer_failed", "payment profile could not be created", err)
	}
	if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		return "", err
	}
	user.StripeCustomerID = &customerID
	return customerID, nil
}

func (s *service) attach(ctx context.Context, methodID, customerID string) error {
	err := s.call(ctx, "attach_payment_method", func(ctx context.Context) error {
		return s.processor.AttachPaymentMethod(ctx, methodID, customerID)
	})
	if err != nil {
		return processorFailure("attach_failed", "payment method could not be attached", err)
	}
	return nil
}

// call runs one processor request under the configured timeout.
func (s *service) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProcessorTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordProcessorCall(operation, time.Since(start), err)
	if err != nil {
		log.Printf("processor %s failed: %v", operation, err)
	}
	return err
}

// processorFailure keeps the processor's message when it has one and hides
// everything else behind fallback.
func processorFailure(code, fallback string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Transient("processor_timeout", "payment provider did not respond, please try again", err)
	}
	var pe *ProcessorError
	if errors.As(err, &pe) && pe.Message != "" {
		return appErrors.External(code, pe.Message, err)
	}
	return appErrors.External(code, fallback, err)
}
