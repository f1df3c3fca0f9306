package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CURRENCY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, ,https://admin.example")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "eur", cfg.Currency)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestValidate_ReportsAllMissingKeys(t *testing.T) {
	cfg := &Config{StorageBackend: "scylla"}

	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{
		"JWT_SECRET", "SESSION_SECRET", "STRIPE_SECRET_KEY", "SCYLLA_HOSTS",
		"SCYLLA_KS_PRODUCTS_KEYSPACE", "SCYLLA_KS_USERS_KEYSPACE", "SCYLLA_KS_ORDERS_KEYSPACE", "REDIS_HOST",
	} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_MemoryBackend(t *testing.T) {
	cfg := &Config{
		StorageBackend:  "memory",
		JWTSecret:       "secret",
		SessionSecret:   "session",
		StripeSecretKey: "sk_test_x",
	}
	assert.NoError(t, cfg.Validate())

	cfg.StorageBackend = "postgres"
	assert.Error(t, cfg.Validate())
}
