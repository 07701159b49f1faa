// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"context"
	"time"

	"pawatasty/internal/config"
	"pawatasty/internal/handlers"
	"pawatasty/internal/middleware"
	"pawatasty/internal/repositories"
	"pawatasty/internal/repositories/cache"
	"pawatasty/internal/services/auth"
	"pawatasty/internal/services/booking"
	"pawatasty/internal/services/merchant"
	"pawatasty/internal/services/paymentmethod"
	"pawatasty/internal/services/promo"
	"pawatasty/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
// limiterStorage backs the auth rate limiter; nil keeps counters in memory.
func SetupRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, cacheService *cache.CacheService, limiterStorage fiber.Storage) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, cacheService)
	merchantRepo := repositories.NewMerchantRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	paymentMethodRepo := repositories.NewPaymentMethodRepository(db)
	promoRepo := repositories.NewPromoRepository(db)

	// Initialize services
	authService := auth.NewService(userRepo, utils.TokenSecrets{
		Access:  cfg.JWTSecret,
		Refresh: cfg.RefreshSecret,
	})
	merchantService := merchant.NewService(merchantRepo, cacheService)
	bookingService := booking.NewService(bookingRepo, merchantService, cfg.Location)
	paymentMethodService := paymentmethod.NewService(
		paymentMethodRepo,
		userRepo,
		paymentmethod.NewStripeProcessor(cfg.StripeSecretKey),
		cfg.Payments,
		&paymentmethod.NoopMetricsCollector{},
	)
	promoService := promo.NewService(promoRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.JWTSecret)

	app.Get("/health", handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": handlers.PingFunc(cacheService.HealthCheck),
	}).HealthCheck)

	api := app.Group("/api")
	setupAuthRoutes(api, handlers.NewAuthHandler(authService), authMiddleware, limiterStorage)

	// Everything below requires a valid access token.
	protected := api.Group("", authMiddleware.Handler)
	setupMerchantRoutes(protected, handlers.NewMerchantHandler(merchantService))
	setupBookingRoutes(protected, handlers.NewBookingHandler(bookingService))
	setupPaymentMethodRoutes(protected, handlers.NewPaymentMethodHandler(paymentMethodService))
	protected.Get("/promos", handlers.NewPromoHandler(promoService).ListPromos)
}

func setupAuthRoutes(api fiber.Router, h *handlers.AuthHandler, authMiddleware *middleware.AuthMiddleware, storage fiber.Storage) {
	limit := authLimiter(storage)
	api.Post("/register", limit, h.RegisterUser)
	api.Post("/login", limit, h.LoginUser)
	api.Post("/refresh", limit, h.RefreshToken)
	api.Post("/logout", authMiddleware.Handler, h.LogoutUser)
	api.Put("/password", authMiddleware.Handler, h.ChangePassword)
}

func setupMerchantRoutes(router fiber.Router, h *handlers.MerchantHandler) {
	merchants := router.Group("/merchants")
	merchants.Get("/", h.ListMerchants)
	merchants.Get("/:id", h.GetMerchant)
	merchants.Get("/:id/deals", h.ListDeals)
}

func setupBookingRoutes(router fiber.Router, h *handlers.BookingHandler) {
	router.Get("/deals/:id/slots", h.AvailableSlots)

	bookings := router.Group("/bookings")
	bookings.Get("/", h.ListBookings)
	bookings.Post("/", h.CreateBooking)
	bookings.Put("/:id/cancel", h.CancelBooking)
}

func setupPaymentMethodRoutes(router fiber.Router, h *handlers.PaymentMethodHandler) {
	methods := router.Group("/payment-methods")
	methods.Get("/", h.ListPaymentMethods)
	methods.Post("/", h.CreatePaymentMethod)
	// Registered before /:id routes so "complete" is never read as an ID.
	methods.Put("/complete", h.CompletePaymentMethod)
	methods.Put("/:id/default", h.SetDefaultPaymentMethod)
	methods.Delete("/:id", h.DeletePaymentMethod)
}

// authLimiter throttles the unauthenticated endpoints per client IP.
func authLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Storage:    storage,
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
