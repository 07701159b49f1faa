package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"pawatasty/internal/services/availability"

	"github.com/gofiber/fiber/v2"
)

// CreateBookingRequest is the booking API's create payload. The selected
// time window travels in SpecialRequests.
type CreateBookingRequest struct {
	DealID          uint   `json:"dealId"`
	BookingDate     string `json:"bookingDate"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"specialRequests"`
	RestaurantID    uint   `json:"restaurantId"`
}

// CreatedBooking is the part of the create response the app relies on.
type CreatedBooking struct {
	ID          uint   `json:"id"`
	Status      string `json:"status"`
	BookingDate string `json:"bookingDate"`
}

// BookingAPI is the remote booking service as seen by a client.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreatedBooking, error)
	ListBookings(ctx context.Context) ([]availability.ExistingBooking, error)
}

// HTTPBookingClient talks to the booking endpoints on behalf of one user.
// Requests are never retried; booking creation is not idempotent.
// Each request is bounded by the client timeout or the context deadline,
// whichever comes first. A cancelled context returns at once while the
// abandoned request runs out in the background within that bound.
type HTTPBookingClient struct {
	baseURL string
	token   string
	timeout time.Duration
}

func NewHTTPBookingClient(baseURL, token string, timeout time.Duration) *HTTPBookingClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPBookingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
	}
}

func (c *HTTPBookingClient) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreatedBooking, error) {
	agent := fiber.Post(c.baseURL + "/api/bookings").JSON(req)
	body, err := c.do(ctx, agent)
	if err != nil {
		return nil, err
	}

	var created CreatedBooking
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}
	if created.ID == 0 {
		return nil, ErrMissingID
	}
	return &created, nil
}

func (c *HTTPBookingClient) ListBookings(ctx context.Context) ([]availability.ExistingBooking, error) {
	body, err := c.do(ctx, fiber.Get(c.baseURL+"/api/bookings"))
	if err != nil {
		return nil, err
	}

	var rows []remoteBooking
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	bookings := make([]availability.ExistingBooking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.existing())
	}
	return bookings, nil
}

// MerchantHours returns the opening hours stored for a merchant.
func (c *HTTPBookingClient) MerchantHours(ctx context.Context, merchantID uint) (string, error) {
	body, err := c.do(ctx, fiber.Get(fmt.Sprintf("%s/api/merchants/%d", c.baseURL, merchantID)))
	if err != nil {
		return "", err
	}

	var merchant struct {
		OpeningHours string `json:"opening_hours"`
	}
	if err := json.Unmarshal(body, &merchant); err != nil {
		return "", fmt.Errorf("failed to decode merchant: %w", err)
	}
	return merchant.OpeningHours, nil
}

func (c *HTTPBookingClient) do(ctx context.Context, agent *fiber.Agent) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token).Timeout(timeout)
	done := make(chan agentResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- agentResult{code: code, body: body, errs: errs}
	}()

	var res agentResult
	select {
	case <-ctx.Done():
		log.Printf("booking api request abandoned: %v", ctx.Err())
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, ctx.Err())
	case res = <-done:
	}
	if len(res.errs) > 0 {
		log.Printf("booking api request failed: %v", res.errs[0])
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, res.errs[0])
	}
	if res.code < 200 || res.code > 299 {
		return nil, &APIError{StatusCode: res.code, Message: errorMessage(res.code, res.body)}
	}
	return res.body, nil
}

type agentResult struct {
	code int
	body []byte
	errs []error
}

func errorMessage(code int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(code)
}

// remoteBooking accepts both field spellings the booking API has used.
type remoteBooking struct {
	ID               uint   `json:"id"`
	DealID           uint   `json:"dealId"`
	DealIDSnake      uint   `json:"deal_id"`
	Status           string `json:"status"`
	BookingDate      string `json:"bookingDate"`
	BookingDateSnake string `json:"booking_date"`
	SpecialRequests  string `json:"specialRequests"`
	BookingTime      string `json:"booking_time"`
}

func (r remoteBooking) existing() availability.ExistingBooking {
	date := firstNonEmpty(r.BookingDate, r.BookingDateSnake)
	if len(date) > len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}
	deal := r.DealID
	if deal == 0 {
		deal = r.DealIDSnake
	}
	return availability.ExistingBooking{
		CalendarDate: date,
		TimeWindow:   firstNonEmpty(r.SpecialRequests, r.BookingTime),
		DealID:       deal,
		Status:       r.Status,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
