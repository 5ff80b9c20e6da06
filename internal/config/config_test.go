package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 14, cfg.InvoiceDueDays)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.OverdueInterval)
	assert.True(t, cfg.Upload.Enabled)
	assert.True(t, cfg.Notify.Enabled)
}

func TestLoad_UploadDisabledWhenPathEmpty(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("UPLOAD_STORAGE_PATH", "")
	t.Setenv("NOTIFICATIONS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Upload.Enabled)
	assert.False(t, cfg.Notify.Enabled)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("RATE_LIMIT_PERIOD", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "pg")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "engagements")

	assert.Equal(t, "postgres://app:p%40ss@pg:5432/engagements?sslmode=disable", getDatabaseURL())
}
