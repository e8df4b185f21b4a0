package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "HTTP_TIMEOUT", "CACHE_MAX_ENTRIES", "CACHE_MAX_AGE",
		"MAINTENANCE_INTERVAL", "LOOKUP_RATE", "LOOKUP_BURST", "TOKEN_TTL",
		"PASSWORD_HASHER", "LOG_LEVEL", "LOG_FORMAT", "PORT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ADMIN_NICKNAME", "root")
	t.Setenv("ADMIN_HOME_CITY", "Jerusalem")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 256, cfg.CacheMaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.CacheMaxAge)
	assert.Equal(t, 15*time.Minute, cfg.MaintenanceInterval)
	assert.Equal(t, 1.0, cfg.LookupRate)
	assert.Equal(t, 10, cfg.LookupBurst)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "sha256", cfg.PasswordHasher)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AdminConfig{Nickname: "root", HomeCity: "Jerusalem", Password: "secret"}, cfg.Admin)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENWEATHER_API_KEY", "key")
	t.Setenv("CACHE_MAX_AGE", "1m")
	t.Setenv("CACHE_MAX_ENTRIES", "5")
	t.Setenv("LOOKUP_RATE", "2.5")
	t.Setenv("PASSWORD_HASHER", "bcrypt")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, time.Minute, cfg.CacheMaxAge)
	assert.Equal(t, 5, cfg.CacheMaxEntries)
	assert.Equal(t, 2.5, cfg.LookupRate)
	assert.Equal(t, "bcrypt", cfg.PasswordHasher)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing admin", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ADMIN_PASSWORD", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("CACHE_MAX_AGE", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "CACHE_MAX_AGE")
	})

	t.Run("bad rate", func(t *testing.T) {
		setRequired(t)
		t.Setenv("LOOKUP_RATE", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestSetupLogging(t *testing.T) {
	cfg := &AppConfig{LogLevel: "debug", LogFormat: "json"}
	assert.NoError(t, cfg.SetupLogging())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.SetupLogging())
}
