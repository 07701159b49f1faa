package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	// Merchant time zones resolve in images without system tzdata.
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config is the typed application configuration, loaded once at startup
// and handed to constructors.
type Config struct {
	Port       string
	CORSOrigin string
	Env        string

	DB    DBConfig
	Redis RedisConfig

	JWTSecret     string
	RefreshSecret string

	StripeSecretKey string

	// Location merchants' opening hours are expressed in.
	Location *time.Location

	Payments PaymentConfig
	Bookings BookingConfig
}

// DBConfig holds the Postgres DSN parts and pool settings.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration

	// LimiterDB keeps rate limiter counters apart from cached data.
	LimiterDB int
}

// PaymentConfig gates payment method provisioning paths.
type PaymentConfig struct {
	// EnabledTypes lists the payment method types accepted on creation.
	// A type missing from the map is disabled.
	EnabledTypes map[string]bool

	VerificationCharge bool
	// VerificationAmount is expressed in the currency's smallest unit.
	VerificationAmount int64
	Currency           string
	ProcessorTimeout   time.Duration
}

// BookingConfig configures the booking API client.
type BookingConfig struct {
	APIBaseURL     string
	RequestTimeout time.Duration
}

// AllPaymentTypes is the default set of enabled payment method types.
var AllPaymentTypes = []string{"card", "applepay", "googlepay", "revolut_pay", "sepa_debit", "ideal", "bancontact"}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load builds the Config from the environment.
func Load() *Config {
	loc, err := time.LoadLocation(GetEnv("MERCHANT_TIMEZONE", "Europe/Amsterdam"))
	if err != nil {
		log.Printf("invalid MERCHANT_TIMEZONE, falling back to UTC: %v", err)
		loc = time.UTC
	}

	return &Config{
		Port:       GetEnv("PORT", "3000"),
		CORSOrigin: GetEnv("CORS_ORIGIN", "http://localhost:8081"),
		Env:        GetEnv("ENV", "development"),
		DB: DBConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "pawatasty"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
			TTL:      GetDurationEnv("REDIS_TTL", 24*time.Hour),

			LimiterDB: GetIntEnv("REDIS_LIMITER_DB", 1),
		},
		JWTSecret:       GetEnv("JWT_SECRET", "pawatasty"),
		RefreshSecret:   GetEnv("REFRESH_SECRET", "pawatasty-refresh"),
		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
		Location:        loc,
		Payments: PaymentConfig{
			EnabledTypes:       enabledTypes(GetEnv("PAYMENT_TYPES_ENABLED", strings.Join(AllPaymentTypes, ","))),
			VerificationCharge: GetBoolEnv("PAYMENT_VERIFICATION_CHARGE", true),
			VerificationAmount: int64(GetIntEnv("PAYMENT_VERIFICATION_AMOUNT", 1)),
			Currency:           GetEnv("PAYMENT_CURRENCY", "eur"),
			ProcessorTimeout:   GetDurationEnv("PAYMENT_PROCESSOR_TIMEOUT", 15*time.Second),
		},
		Bookings: BookingConfig{
			APIBaseURL:     GetEnv("BOOKING_API_URL", "http://localhost:3000"),
			RequestTimeout: GetDurationEnv("BOOKING_API_TIMEOUT", 15*time.Second),
		},
	}
}

func enabledTypes(list string) map[string]bool {
	types := make(map[string]bool)
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			types[t] = true
		}
	}
	return types
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
