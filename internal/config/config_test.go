package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PAYMENT_TYPES_ENABLED", "")
	t.Setenv("MERCHANT_TIMEZONE", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, int64(1), cfg.Payments.VerificationAmount)
	assert.True(t, cfg.Payments.VerificationCharge)
	assert.Equal(t, 15*time.Second, cfg.Payments.ProcessorTimeout)
	for _, typ := range AllPaymentTypes {
		assert.True(t, cfg.Payments.EnabledTypes[typ], typ)
	}
	assert.Equal(t, "Europe/Amsterdam", cfg.Location.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAYMENT_TYPES_ENABLED", "card, SEPA_DEBIT")
	t.Setenv("PAYMENT_VERIFICATION_CHARGE", "false")
	t.Setenv("PAYMENT_PROCESSOR_TIMEOUT", "5s")
	t.Setenv("MERCHANT_TIMEZONE", "Not/AZone")

	cfg := Load()

	assert.Equal(t, map[string]bool{"card": true, "sepa_debit": true}, cfg.Payments.EnabledTypes)
	assert.False(t, cfg.Payments.VerificationCharge)
	assert.Equal(t, 5*time.Second, cfg.Payments.ProcessorTimeout)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestGetIntEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, GetIntEnv("SOME_INT", 7))
}
