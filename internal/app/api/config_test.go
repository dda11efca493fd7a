package api

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

var configKeys = []string{
	"PORT", "POSTGRES_DSN", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
	"JWT_SECRET", "RABBITMQ_URL", "RABBITMQ_EXCHANGE", "REQUEST_TIMEOUT", "TAX_RATE",
	"FREE_SHIPPING_THRESHOLD", "FLAT_SHIPPING_FEE", "LOW_STOCK_THRESHOLD", "CART_TTL_HOURS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, "commerce.events", cfg.RabbitMQExchange)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(100)))
	assert.True(t, cfg.Pricing.FlatShippingFee.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, 72*time.Hour, cfg.CartTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TEMPORAL_DISABLED", "true")
	t.Setenv("JWT_SECRET", " s3cret ")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("FLAT_SHIPPING_FEE", "4.99")
	t.Setenv("LOW_STOCK_THRESHOLD", "0")
	t.Setenv("CART_TTL_HOURS", "24")

	cfg, err := loadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, cfg.Pricing.FlatShippingFee.Equal(decimal.RequireFromString("4.99")))
	assert.Equal(t, 0, cfg.LowStockThreshold)
	assert.Equal(t, 24*time.Hour, cfg.CartTTL)
}

func TestLoadConfigRejectsInvalidNumbers(t *testing.T) {
	cases := map[string]string{
		"REQUEST_TIMEOUT":         "ten",
		"TAX_RATE":                "1.5",
		"FREE_SHIPPING_THRESHOLD": "-1",
		"FLAT_SHIPPING_FEE":       "abc",
		"LOW_STOCK_THRESHOLD":     "-2",
		"CART_TTL_HOURS":          "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := loadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
