package merchant

import "errors"

var (
	ErrMerchantInactive = errors.New("merchant is not active")
	ErrInvalidHours     = errors.New("invalid opening hours")
)
