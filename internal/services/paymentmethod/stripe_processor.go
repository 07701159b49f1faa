package paymentmethod

import (
	"context"
	"errors"
	"fmt"

	"pawatasty/internal/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeProcessor implements Processor on the Stripe API.
type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	return &StripeProcessor{api: client.New(secretKey, nil)}
}

func (p *StripeProcessor) RetrievePaymentMethod(ctx context.Context, id string) (*ExternalMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.Get(id, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return externalMethod(pm), nil
}

func (p *StripeProcessor) AttachPaymentMethod(ctx context.Context, methodID, customerID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx

	if _, err := p.api.PaymentMethods.Attach(methodID, params); err != nil {
		return wrapStripeError(err)
	}
	return nil
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError(err)
	}
	return c.ID, nil
}

func (p *StripeProcessor) CreateSetupIntent(ctx context.Context, customerID, methodType string) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{methodType}),
		Usage:              stripe.String("off_session"),
	}
	params.Context = ctx

	si, err := p.api.SetupIntents.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return setupIntent(si), nil
}

func (p *StripeProcessor) RetrieveSetupIntent(ctx context.Context, id string) (*SetupIntent, error) {
	params := &stripe.SetupIntentParams{}
	params.Context = ctx

	si, err := p.api.SetupIntents.Get(id, params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return setupIntent(si), nil
}

func (p *StripeProcessor) CreateSEPAPaymentMethod(ctx context.Context, iban, holderName, email string) (*ExternalMethod, error) {
	billing := &stripe.BillingDetailsParams{Name: stripe.String(holderName)}
	if email != "" {
		billing.Email = stripe.String(email)
	}
	params := &stripe.PaymentMethodParams{
		Type:           stripe.String(models.PaymentTypeSEPADebit),
		SepaDebit:      &stripe.PaymentMethodSepaDebitParams{Iban: stripe.String(iban)},
		BillingDetails: billing,
	}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.New(params)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return externalMethod(pm), nil
}

func (p *StripeProcessor) VerificationCharge(ctx context.Context, charge Charge) error {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(charge.Amount),
		Currency:           stripe.String(charge.Currency),
		Customer:           stripe.String(charge.CustomerID),
		PaymentMethod:      stripe.String(charge.PaymentMethodID),
		PaymentMethodTypes: stripe.StringSlice([]string{stripeMethodType(charge.MethodType)}),
		Confirm:            stripe.Bool(true),
		OffSession:         stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("purpose", "validation_charge")
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return wrapStripeError(err)
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		return &ProcessorError{
			Code:    string(pi.Status),
			Message: "Your payment method was declined",
			Err:     ErrVerificationRefused,
		}
	}
	return nil
}

// stripeMethodType maps wallet types onto the card type Stripe uses for them.
func stripeMethodType(t string) string {
	switch t {
	case models.PaymentTypeApplePay, models.PaymentTypeGooglePay:
		return models.PaymentTypeCard
	default:
		return t
	}
}

func externalMethod(pm *stripe.PaymentMethod) *ExternalMethod {
	out := &ExternalMethod{ID: pm.ID, Type: string(pm.Type)}
	if pm.Card != nil {
		out.Brand = string(pm.Card.Brand)
		out.Last4 = pm.Card.Last4
		out.ExpMonth = int(pm.Card.ExpMonth)
		out.ExpYear = int(pm.Card.ExpYear)
	}
	if pm.SepaDebit != nil {
		out.Last4 = pm.SepaDebit.Last4
	}
	return out
}

func setupIntent(si *stripe.SetupIntent) *SetupIntent {
	out := &SetupIntent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       string(si.Status),
	}
	if si.PaymentMethod != nil {
		out.PaymentMethodID = si.PaymentMethod.ID
	}
	return out
}

func wrapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &ProcessorError{
			Code:       string(se.Code),
			Message:    se.Msg,
			StatusCode: se.HTTPStatusCode,
			Err:        err,
		}
	}
	return fmt.Errorf("stripe request failed: %w", err)
}
