package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pawatasty/internal/models"
	"pawatasty/internal/repositories"
	"pawatasty/internal/services/auth"
	"pawatasty/internal/services/merchant"
	"pawatasty/internal/services/promo"
	"pawatasty/internal/utils"

	"github.com/lib/pq"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	var input auth.RegisterInput
	var tier string

	c := &cobra.Command{
		Use:   "user",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, cacheService, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			userRepo := repositories.NewUserRepository(db, cacheService)
			svc := auth.NewService(userRepo, utils.TokenSecrets{Access: cfg.JWTSecret, Refresh: cfg.RefreshSecret})
			user, err := svc.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			if tier != "" && tier != user.SubscriptionTier {
				user.SubscriptionTier = tier
				if err := userRepo.Update(cmd.Context(), user); err != nil {
					return err
				}
			}
			fmt.Fprintf(os.Stdout, "created user %d (%s, %s)\n", user.ID, user.Email, user.SubscriptionTier)
			return nil
		},
	}

	c.Flags().StringVar(&input.Email, "email", "", "email address")
	c.Flags().StringVar(&input.Password, "password", "", "password (8+ characters, one special character)")
	c.Flags().StringVar(&input.Name, "name", "", "display name")
	c.Flags().StringVar(&input.Phone, "phone", "", "phone number in E.164 format")
	c.Flags().StringVar(&tier, "tier", "", "subscription tier: free, plus or premium")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("name")
	return c
}

func newMerchantCmd() *cobra.Command {
	var m models.Merchant

	c := &cobra.Command{
		Use:   "merchant",
		Short: "Create a merchant",
		Long: `Create a merchant. Opening hours use day ranges, for example
"Mon-Fri: 12:00-22:00, Sat-Sun: 10:00-01:00". Leave them empty for the default week.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, cacheService, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			svc := merchant.NewService(repositories.NewMerchantRepository(db), cacheService)
			if err := svc.Create(cmd.Context(), &m); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created merchant %d (%s)\n", m.ID, m.Name)
			return nil
		},
	}

	c.Flags().StringVar(&m.Name, "name", "", "merchant name")
	c.Flags().StringVar(&m.Category, "category", models.CategoryRestaurant, "merchant category")
	c.Flags().StringVar(&m.Address, "address", "", "street address")
	c.Flags().Float64Var(&m.Latitude, "lat", 0, "latitude")
	c.Flags().Float64Var(&m.Longitude, "lng", 0, "longitude")
	c.Flags().StringVar(&m.OpeningHours, "hours", "", "opening hours")
	_ = c.MarkFlagRequired("name")
	return c
}

func newHoursCmd() *cobra.Command {
	var merchantID uint
	var hours string

	c := &cobra.Command{
		Use:   "hours",
		Short: "Replace a merchant's opening hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, cacheService, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			svc := merchant.NewService(repositories.NewMerchantRepository(db), cacheService)
			if err := svc.UpdateHours(cmd.Context(), merchantID, hours); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "updated hours of merchant %d\n", merchantID)
			return nil
		},
	}

	c.Flags().UintVar(&merchantID, "merchant", 0, "merchant ID")
	c.Flags().StringVar(&hours, "hours", "", "opening hours")
	_ = c.MarkFlagRequired("merchant")
	_ = c.MarkFlagRequired("hours")
	return c
}

func newDealCmd() *cobra.Command {
	var d models.Deal
	var validDays int

	c := &cobra.Command{
		Use:   "deal",
		Short: "Create a deal for a merchant",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, cacheService, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if validDays > 0 {
				until := time.Now().AddDate(0, 0, validDays)
				d.ValidUntil = &until
			}
			svc := merchant.NewService(repositories.NewMerchantRepository(db), cacheService)
			if err := svc.CreateDeal(cmd.Context(), &d); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created deal %d (%s, %d bookings)\n", d.ID, d.Title, d.RemainingBookings)
			return nil
		},
	}

	c.Flags().UintVar(&d.MerchantID, "merchant", 0, "merchant ID")
	c.Flags().StringVar(&d.Title, "title", "", "deal title")
	c.Flags().StringVar(&d.Description, "description", "", "deal description")
	c.Flags().IntVar(&d.RemainingBookings, "remaining", 20, "number of bookings available")
	c.Flags().IntVar(&validDays, "valid-days", 0, "days the deal stays bookable, 0 for no end")
	_ = c.MarkFlagRequired("merchant")
	_ = c.MarkFlagRequired("title")
	return c
}

func newPromoCmd() *cobra.Command {
	var p models.Promo
	var tiers string

	c := &cobra.Command{
		Use:   "promo",
		Short: "Create a promo",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if tiers != "" {
				p.Tiers = pq.StringArray(strings.Split(tiers, ","))
			}
			p.Active = true
			svc := promo.NewService(repositories.NewPromoRepository(db))
			if err := svc.Create(cmd.Context(), &p); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created promo %d (%s)\n", p.ID, p.Title)
			return nil
		},
	}

	c.Flags().StringVar(&p.Title, "title", "", "promo title")
	c.Flags().StringVar(&p.Body, "body", "", "promo body")
	c.Flags().StringVar(&p.ImageURL, "image", "", "image URL")
	c.Flags().StringVar(&tiers, "tiers", "", "comma-separated tiers, empty for everyone")
	c.Flags().IntVar(&p.Priority, "priority", 0, "higher shows first")
	_ = c.MarkFlagRequired("title")
	return c
}
