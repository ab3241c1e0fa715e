package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tailor")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tailor")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("BUSINESS_TIMEZONE", "")
	t.Setenv("AUTO_MIGRATE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SettingsCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tailor")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_READ_TIMEOUT", "30")
	t.Setenv("HTTP_WRITE_TIMEOUT", "2m")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("RATE_LIMIT_PER_MIN", "50")
	t.Setenv("BUSINESS_TIMEZONE", "Africa/Lagos")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.WriteTimeout)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 50, cfg.RateLimitPerMin)
	assert.Equal(t, "Africa/Lagos", cfg.Location().String())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tailor")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
}

func TestGetDuration_FallbackOnGarbage(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getDuration("SOME_DURATION", time.Minute))
}
