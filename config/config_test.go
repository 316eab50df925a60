package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HEALTHOASIS_API_URL", "")
	t.Setenv("HEALTHOASIS_SOCKET_URL", "")
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, DefaultAPIBaseURL, cfg.Portal.APIBaseURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Portal.SocketURL)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Portal.WithdrawDelay)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_SingleResolvedBaseURL(t *testing.T) {
	t.Setenv("HEALTHOASIS_API_URL", "https://api.example.org/")
	t.Setenv("HEALTHOASIS_SOCKET_URL", "")

	cfg := Load()

	assert.Equal(t, "https://api.example.org", cfg.Portal.APIBaseURL)
	// socket falls back to the resolved API host, never to another literal
	assert.Equal(t, "https://api.example.org", cfg.Portal.SocketURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.IsProduction())
}
