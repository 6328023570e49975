package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("NOTIFICATION_TTL", "10s")
	t.Setenv("CORS_ORIGINS", "https://cabinet.ma, https://admin.cabinet.ma")
	t.Setenv("JWT_EXPIRY_HOURS", "8")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TWILIO_ACCOUNT_SID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 10*time.Second, cfg.NotificationTTL)
	assert.Equal(t, []string{"https://cabinet.ma", "https://admin.cabinet.ma"}, cfg.CORSOrigins)
	assert.Equal(t, 8*time.Hour, cfg.JWTExpiry())
	assert.Equal(t, uint64(3), cfg.PersistMaxRetry)
	assert.False(t, cfg.TwilioEnabled())
}

func TestLoadRejectsPostgresWithoutURL(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverPostgres)
	t.Setenv("DB_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateUnknownDriver(t *testing.T) {
	cfg := &Config{StorageDriver: "mongo"}
	assert.Error(t, cfg.Validate())
}
