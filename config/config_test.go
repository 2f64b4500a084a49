package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/storefront?sslmode=disable")
	t.Setenv("API_KEY", "public-anon-key")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
}

func TestProcessDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Process()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 12, cfg.DefaultPageSize)
	assert.False(t, cfg.CheckoutEnforceStock)
	assert.False(t, cfg.AdminUsersEnabled())
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestProcessOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "PGX")
	t.Setenv("SERVICE_ROLE_KEY", "service-role")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CHECKOUT_ENFORCE_STOCK", "true")

	cfg, err := Process()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.True(t, cfg.AdminUsersEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.CheckoutEnforceStock)
}

func TestProcessRejectsInvalid(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "mysql")
	_, err := Process()
	assert.ErrorContains(t, err, "DB_DRIVER")

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "short")
	_, err = Process()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("GIN_MODE", "production")
	_, err = Process()
	assert.ErrorContains(t, err, "GIN_MODE")
}

func TestProcessMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	_, err := Process()
	assert.Error(t, err)
}
