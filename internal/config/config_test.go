package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/api/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, int64(200), cfg.Deposit.MinAmount)
	assert.Equal(t, 5*time.Second, cfg.Deposit.PollInterval)
	assert.Equal(t, 24, cfg.Deposit.MaxAttempts)
	assert.Equal(t, "@hourly", cfg.Session.CleanupCron)
	assert.Equal(t, 5, cfg.RateLimit.MaxMessagesPerSecond)
	assert.Empty(t, cfg.WhatsApp.AllowedJIDs)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:3000")
	t.Setenv("DEPOSIT_MIN_AMOUNT", "500")
	t.Setenv("DEPOSIT_POLL_INTERVAL", "2s")
	t.Setenv("DEPOSIT_MAX_ATTEMPTS", "10")
	t.Setenv("WA_ALLOWED_JIDS", " 237670000000@s.whatsapp.net , ,237690000000@s.whatsapp.net")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(500), cfg.Deposit.MinAmount)
	assert.Equal(t, 2*time.Second, cfg.Deposit.PollInterval)
	assert.Equal(t, 10, cfg.Deposit.MaxAttempts)
	assert.Equal(t, []string{"237670000000@s.whatsapp.net", "237690000000@s.whatsapp.net"}, cfg.WhatsApp.AllowedJIDs)
}

func TestLoadRequiresBackend(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "BACKEND_BASE_URL is required")
}

func TestValidateLotteryAnnouncement(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:3000")
	t.Setenv("LOTTERY_ANNOUNCE_CRON", "0 18 * * *")
	t.Setenv("LOTTERY_ANNOUNCE_GROUP_JID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateCatalogCacheTTL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:3000")

	for _, ttl := range []string{"0s", "-1m"} {
		t.Setenv("CATALOG_CACHE_TTL", ttl)
		_, err := Load()
		assert.EqualError(t, err, "CATALOG_CACHE_TTL must be positive", ttl)
	}

	t.Setenv("CATALOG_CACHE_TTL", "90s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Catalog.CacheTTL)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, parseInt("7", 1))
	assert.Equal(t, 1, parseInt("x", 1))
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, []string{}, parseStringList(""))
}
