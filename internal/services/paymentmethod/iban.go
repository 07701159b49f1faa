package paymentmethod

import (
	"strings"

	"pawatasty/internal/utils/validation"
)

func init() {
	validation.Register("iban", ValidIBAN)
}

// NormalizeIBAN strips spaces and upper-cases an IBAN.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}

// ValidIBAN checks an IBAN's shape and its ISO 13616 mod-97 check digits.
func ValidIBAN(iban string) bool {
	iban = NormalizeIBAN(iban)
	if len(iban) < 15 || len(iban) > 34 {
		return false
	}
	for i, r := range iban {
		switch {
		case i < 2 && (r < 'A' || r > 'Z'):
			return false
		case i >= 2 && i < 4 && (r < '0' || r > '9'):
			return false
		case (r < 'A' || r > 'Z') && (r < '0' || r > '9'):
			return false
		}
	}

	// Move the country code and check digits to the end, expand letters
	// to two digits and reduce mod 97 as we go.
	rearranged := iban[4:] + iban[:4]
	remainder := 0
	for _, r := range rearranged {
		if r >= 'A' && r <= 'Z' {
			v := int(r-'A') + 10
			remainder = (remainder*100 + v) % 97
			continue
		}
		remainder = (remainder*10 + int(r-'0')) % 97
	}
	return remainder == 1
}
