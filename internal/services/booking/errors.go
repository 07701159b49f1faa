package booking

import "errors"

var (
	ErrConnectivity    = errors.New("booking service unreachable")
	ErrMissingID       = errors.New("booking response has no id")
	ErrDealUnavailable = errors.New("deal is not bookable")
	ErrNotCancellable  = errors.New("booking can no longer be cancelled")
)

// Failure reasons reported by Submitter.
const (
	ReasonSessionExpired  = "session expired"
	ReasonSlotUnavailable = "slot no longer available"
	ReasonConnectivity    = "connectivity"
)

// APIError is a non-2xx answer from the booking API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}
