package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"

	dashboarddomain "github.com/Apurer/go-gin-commerce/internal/domains/dashboard/domain"
	"github.com/Apurer/go-gin-commerce/internal/domains/pricing"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultCartTTLHours   = 72
	defaultExchange       = "commerce.events"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	JWTSecret         string
	RabbitMQURL       string
	RabbitMQExchange  string
	RequestTimeout    time.Duration
	Pricing           pricing.Policy
	LowStockThreshold int
	CartTTL           time.Duration
}

// LoadConfig reads an optional .env file and the environment, applies defaults, and
// validates numeric settings.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return loadFromEnv()
}

func loadFromEnv() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		RabbitMQExchange:  envDefault("RABBITMQ_EXCHANGE", defaultExchange),
		RequestTimeout:    defaultRequestTimeout,
		Pricing:           pricing.DefaultPolicy(),
		LowStockThreshold: dashboarddomain.DefaultLowStockThreshold,
		CartTTL:           defaultCartTTLHours * time.Hour,
	}
	if raw := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be a positive duration such as 10s")
		}
		cfg.RequestTimeout = timeout
	}
	var err error
	if cfg.Pricing.TaxRate, err = envDecimal("TAX_RATE", cfg.Pricing.TaxRate); err != nil {
		return Config{}, err
	}
	if cfg.Pricing.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("TAX_RATE must be a fraction between 0 and 1")
	}
	if cfg.Pricing.FreeShippingThreshold, err = envDecimal("FREE_SHIPPING_THRESHOLD", cfg.Pricing.FreeShippingThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Pricing.FlatShippingFee, err = envDecimal("FLAT_SHIPPING_FEE", cfg.Pricing.FlatShippingFee); err != nil {
		return Config{}, err
	}
	if cfg.LowStockThreshold, err = envInt("LOW_STOCK_THRESHOLD", cfg.LowStockThreshold, 0); err != nil {
		return Config{}, err
	}
	hours, err := envInt("CART_TTL_HOURS", defaultCartTTLHours, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.CartTTL = time.Duration(hours) * time.Hour
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must be a non-negative number", key)
	}
	return value, nil
}

func envInt(key string, fallback, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min {
		return 0, fmt.Errorf("%s must be an integer of at least %d", key, min)
	}
	return value, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
