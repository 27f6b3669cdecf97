package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Razorpay payment gateway configuration
	RazorpayKeyID     string
	RazorpayKeySecret string

	// Revenue split configuration
	CommissionRate decimal.Decimal
	TaxRate        decimal.Decimal

	// Payment order cache lifetime
	OrderExpireMinutes int

	// Admin API configuration
	AdminAPIKey string

	// Brevo email configuration (payout alerts)
	BrevoAPIKey      string
	BrevoFromEmail   string
	BrevoFromName    string
	PayoutAlertEmail string

	// Webhook configuration (app backend notifications)
	WebhookCallbackURL string
	WebhookSecret      string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	commissionRate, err := getEnvDecimal("COMMISSION_RATE", "0.20")
	if err != nil {
		return fmt.Errorf("invalid COMMISSION_RATE: %w", err)
	}
	taxRate, err := getEnvDecimal("TAX_RATE", "0.18")
	if err != nil {
		return fmt.Errorf("invalid TAX_RATE: %w", err)
	}

	AppConfig = &Config{
		Port:               getEnv("PORT", "8080"),
		Mode:               getEnv("GIN_MODE", "debug"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		// No default: an unset REDIS_URL runs the service without the
		// payment order cache instead of requiring a local Redis.
		RedisURL:           getEnv("REDIS_URL", ""),
		RazorpayKeyID:      getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:  getEnv("RAZORPAY_KEY_SECRET", ""),
		CommissionRate:     commissionRate,
		TaxRate:            taxRate,
		OrderExpireMinutes: getEnvInt("ORDER_EXPIRE_MINUTES", 30),
		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:     getEnv("BREVO_FROM_EMAIL", ""),
		BrevoFromName:      getEnv("BREVO_FROM_NAME", "Marketplace Ledger"),
		PayoutAlertEmail:   getEnv("PAYOUT_ALERT_EMAIL", ""),
		WebhookCallbackURL: getEnv("WEBHOOK_CALLBACK_URL", ""),
		WebhookSecret:      getEnv("WEBHOOK_SECRET", ""),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return decimal.NewFromString(value)
}
