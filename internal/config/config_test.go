package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-toko/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL":         "redis://localhost:6379/0",
		"UPSTREAM_BASE_URL": "http://localhost:3000/api",
		"PORT":              "",
		"CURRENCY_CODE":     "",
		"SESSION_TTL":       "",
	})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, "VND", cfg.CurrencyCode)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.HeldOrderTTL)
	assert.Equal(t, 60*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, 3, cfg.UpstreamAttempts)
}

func TestLoadRequiresRedisURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"REDIS_URL":         "",
		"UPSTREAM_BASE_URL": "http://localhost:3000/api",
	})
	require.Error(t, err)
}

func TestLoadRequiresUpstreamBaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"REDIS_URL":         "redis://localhost:6379/0",
		"UPSTREAM_BASE_URL": "",
	})
	require.Error(t, err)
}

func TestUpstreamBaseURLTrimsTrailingSlash(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL":         "redis://localhost:6379/0",
		"UPSTREAM_BASE_URL": "http://localhost:3000/api/",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", cfg.UpstreamBaseURL)
}
