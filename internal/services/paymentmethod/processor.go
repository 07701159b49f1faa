package paymentmethod

import "context"

// ExternalMethod is a payment method as the processor knows it.
type ExternalMethod struct {
	ID    string
	Type  string
	Brand string
	Last4 string
	// Expiry is only known for cards.
	ExpMonth int
	ExpYear  int
}

// SetupIntent is an in-progress registration that may need a redirect.
type SetupIntent struct {
	ID              string
	ClientSecret    string
	Status          string
	PaymentMethodID string
}

const SetupIntentSucceeded = "succeeded"

// Charge describes a verification charge.
type Charge struct {
	CustomerID      string
	PaymentMethodID string
	MethodType      string
	Amount          int64
	Currency        string
}

// Processor is the external payments processor. Calls are never retried by
// callers; charge and setup intent creation are not idempotent.
type Processor interface {
	RetrievePaymentMethod(ctx context.Context, id string) (*ExternalMethod, error)
	AttachPaymentMethod(ctx context.Context, methodID, customerID string) error
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID, methodType string) (*SetupIntent, error)
	RetrieveSetupIntent(ctx context.Context, id string) (*SetupIntent, error)
	CreateSEPAPaymentMethod(ctx context.Context, iban, holderName, email string) (*ExternalMethod, error)
	// VerificationCharge charges a minimal amount, confirmed synchronously,
	// to prove the method is chargeable.
	VerificationCharge(ctx context.Context, charge Charge) error
}
