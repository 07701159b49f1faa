package paymentmethod

import (
	"encoding/json"
	"fmt"
	"strings"

	"pawatasty/internal/models"
)

// ProvisionRequest is one of TokenizedRequest, SEPARequest or
// RedirectRequest. Each variant carries only the fields its type needs.
type ProvisionRequest interface {
	PaymentType() string
	WantsPrimary() bool
	isProvisionRequest()
}

// TokenizedRequest adds a card or wallet tokenized on the device. Raw card
// data never reaches the server.
type TokenizedRequest struct {
	Type            string `json:"type" validate:"required,oneof=card applepay googlepay revolut_pay"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	IsPrimary       bool   `json:"isPrimary"`
}

// SEPARequest adds a bank account for SEPA direct debit.
type SEPARequest struct {
	IBAN       string `json:"iban" validate:"required,iban"`
	HolderName string `json:"cardholderName" validate:"required,max=120"`
	Email      string `json:"email" validate:"omitempty,email"`
	IsPrimary  bool   `json:"isPrimary"`
}

// RedirectRequest starts a method confirmed through a bank redirect.
type RedirectRequest struct {
	Type       string `json:"type" validate:"required,oneof=ideal bancontact"`
	HolderName string `json:"cardholderName" validate:"required,max=120"`
	Email      string `json:"email" validate:"omitempty,email"`
	IsPrimary  bool   `json:"isPrimary"`
}

func (r TokenizedRequest) PaymentType() string { return r.Type }
func (r SEPARequest) PaymentType() string      { return models.PaymentTypeSEPADebit }
func (r RedirectRequest) PaymentType() string  { return r.Type }

func (r TokenizedRequest) WantsPrimary() bool { return r.IsPrimary }
func (r SEPARequest) WantsPrimary() bool      { return r.IsPrimary }
func (r RedirectRequest) WantsPrimary() bool  { return r.IsPrimary }

func (TokenizedRequest) isProvisionRequest() {}
func (SEPARequest) isProvisionRequest()      {}
func (RedirectRequest) isProvisionRequest()  {}

// Decode reads a create request body into the variant named by its
// "type" field.
func Decode(body []byte) (ProvisionRequest, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	switch typ := strings.ToLower(strings.TrimSpace(envelope.Type)); typ {
	case models.PaymentTypeCard, models.PaymentTypeApplePay, models.PaymentTypeGooglePay, models.PaymentTypeRevolutPay:
		var r TokenizedRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		r.Type = typ
		return r, nil
	case models.PaymentTypeSEPADebit:
		var r SEPARequest
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		r.IBAN = NormalizeIBAN(r.IBAN)
		return r, nil
	case models.PaymentTypeIDEAL, models.PaymentTypeBancontact:
		var r RedirectRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		r.Type = typ
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, envelope.Type)
	}
}
