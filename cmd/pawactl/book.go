package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pawatasty/internal/config"
	"pawatasty/internal/services/availability"
	"pawatasty/internal/services/booking"

	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		apiURL, token, hours string
		dealID, restaurantID uint
		sel                  availability.Selection
		list                 bool
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a deal slot through the HTTP API",
		Long: `Book a deal slot the way the app does: candidate slots come from the
merchant's opening hours, local guards run first and the API decides last.
Use --list to print the free slots instead of booking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if apiURL == "" {
				apiURL = cfg.Bookings.APIBaseURL
			}
			api := booking.NewHTTPBookingClient(apiURL, token, cfg.Bookings.RequestTimeout)

			existing, err := api.ListBookings(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not load bookings: %w", err)
			}

			existing = existingFor(dealID, existing)
			if hours == "" {
				if hours, err = api.MerchantHours(cmd.Context(), restaurantID); err != nil {
					return fmt.Errorf("could not load merchant hours: %w", err)
				}
			}
			now := time.Now().In(cfg.Location)
			candidates := availability.GenerateSlots(availability.ParseOrDefault(hours), now, nil)

			if list {
				free := availability.FilterAvailable(candidates, existing, now)
				for _, day := range availability.GroupByDay(free) {
					fmt.Fprintf(os.Stdout, "%s (%s): %s\n", day.DayLabel, day.Date, strings.Join(day.Windows, ", "))
				}
				return nil
			}

			out := booking.NewSubmitter(api).Submit(cmd.Context(), booking.SubmitInput{
				DealID:       dealID,
				RestaurantID: restaurantID,
				Selection:    sel,
				Candidates:   candidates,
				Bookings:     existing,
				Now:          now,
			})
			if out.State != booking.StateSucceeded {
				return fmt.Errorf("booking failed: %s", out.Reason)
			}
			fmt.Fprintf(os.Stdout, "booked %d for %s %s (%s)\n", out.Booking.ID, out.Booking.BookingDate, sel.TimeWindow, out.Booking.Status)
			return nil
		},
	}

	c.Flags().StringVar(&apiURL, "api", "", "API base URL (default BOOKING_API_URL)")
	c.Flags().StringVar(&token, "token", os.Getenv("PAWATASTY_TOKEN"), "access token")
	c.Flags().UintVar(&dealID, "deal", 0, "deal ID")
	c.Flags().UintVar(&restaurantID, "restaurant", 0, "restaurant (merchant) ID")
	c.Flags().StringVar(&hours, "hours", "", "override the merchant's stored opening hours")
	c.Flags().StringVar(&sel.DayLabel, "day", "", `day label such as "Today" or "Tomorrow"`)
	c.Flags().StringVar(&sel.Date, "date", "", "calendar date YYYY-MM-DD, overrides --day")
	c.Flags().StringVar(&sel.TimeWindow, "window", "", `time window such as "18:00 - 21:00"`)
	c.Flags().BoolVar(&list, "list", false, "print free slots and exit")
	_ = c.MarkFlagRequired("deal")
	_ = c.MarkFlagRequired("restaurant")
	return c
}

func existingFor(dealID uint, bookings []availability.ExistingBooking) []availability.ExistingBooking {
	out := make([]availability.ExistingBooking, 0, len(bookings))
	for _, b := range bookings {
		if b.DealID == dealID {
			out = append(out, b)
		}
	}
	return out
}
