package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"2d":  48 * time.Hour,
		"30m": 30 * time.Minute,
		"15s": 15 * time.Second,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	for k, v := range map[string]string{
		"APP_PORT":     ":8080",
		"DB_HOST":      "localhost",
		"DB_PORT":      "5432",
		"DB_USER":      "u",
		"DB_PASSWORD":  "p",
		"DB_NAME":      "orders",
		"DB_SSLMODE":   "disable",
		"JWT_SECRET":   "secret",
		"FRONTEND_URL": "shop.example.com",
	} {
		t.Setenv(k, v)
	}
	t.Setenv("CURRENCY", "")
	t.Setenv("DELIVERY_CHARGE", "")
	t.Setenv("PENDING_ORDER_TTL", "")
	t.Setenv("MONGO_URI", "")

	cfg := Load(zap.NewNop())
	assert.Equal(t, "NGN", cfg.Store.Currency)
	assert.Equal(t, float64(500), cfg.Store.DeliveryCharge)
	assert.Equal(t, 48*time.Hour, cfg.PendingOrderTTL)
	assert.False(t, cfg.Mongo.Enabled)
	assert.False(t, cfg.Store.StrictTransitions)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_PanicsOnMissingRequired(t *testing.T) {
	t.Setenv("APP_PORT", "")
	assert.NotPanics(t, func() { _ = getEnvDefault("APP_PORT", "x") })
	assert.Panics(t, func() { getEnv("SURELY_UNSET_ORDER_SERVICE_KEY", zap.NewNop()) })
}
