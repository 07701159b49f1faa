package paymentmethod

import "pawatasty/internal/models"

// Capabilities says what a stored payment method can be used for.
type Capabilities struct {
	Subscriptions bool
	OffSession    bool
	OneTime       bool
}

// CapabilitiesFor returns the capabilities of a method type. Redirect
// methods are one-time until their setup completes, which leaves a SEPA
// mandate usable off session.
func CapabilitiesFor(methodType string, completed bool) Capabilities {
	switch methodType {
	case models.PaymentTypeSEPADebit:
		return Capabilities{Subscriptions: true, OffSession: true}
	case models.PaymentTypeIDEAL, models.PaymentTypeBancontact:
		if completed {
			return Capabilities{Subscriptions: true, OffSession: true, OneTime: true}
		}
		return Capabilities{OneTime: true}
	default:
		return Capabilities{Subscriptions: true, OffSession: true, OneTime: true}
	}
}

func (c Capabilities) apply(pm *models.PaymentMethod) {
	pm.SupportsSubscriptions = c.Subscriptions
	pm.SupportsOffSession = c.OffSession
	pm.SupportsOneTime = c.OneTime
}
