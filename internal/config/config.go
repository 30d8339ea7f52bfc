package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	Backend   BackendConfig
	Deposit   DepositConfig
	Session   SessionConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
	Lottery   LotteryConfig
	LogLevel  string
}

// ServerConfig holds operator HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// WhatsAppConfig holds WhatsApp configuration
type WhatsAppConfig struct {
	DBPath string
	// AllowedJIDs restricts who may talk to the bot. Empty means everyone.
	AllowedJIDs []string
}

// BackendConfig holds the boosting backend API configuration
type BackendConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// DepositConfig holds deposit and payment polling configuration
type DepositConfig struct {
	MinAmount    int64
	PollInterval time.Duration
	MaxAttempts  int
}

// SessionConfig holds chat session persistence configuration
type SessionConfig struct {
	DBPath      string
	TTL         time.Duration
	CleanupCron string
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	APIKey string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxMessagesPerSecond int
}

// CatalogConfig holds service catalog cache configuration
type CatalogConfig struct {
	CacheTTL time.Duration
}

// LotteryConfig holds "Grande Roue" announcement configuration
type LotteryConfig struct {
	AnnounceCron     string
	AnnounceGroupJID string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "127.0.0.1"),
		},
		WhatsApp: WhatsAppConfig{
			DBPath:      getEnv("WA_DB_PATH", "./db/whatsmeow.db"),
			AllowedJIDs: parseStringList(getEnv("WA_ALLOWED_JIDS", "")),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
			RequestTimeout: parseDuration(getEnv("BACKEND_REQUEST_TIMEOUT", "15s"), 15*time.Second),
		},
		Deposit: DepositConfig{
			MinAmount:    int64(parseInt(getEnv("DEPOSIT_MIN_AMOUNT", "200"), 200)),
			PollInterval: parseDuration(getEnv("DEPOSIT_POLL_INTERVAL", "5s"), 5*time.Second),
			MaxAttempts:  parseInt(getEnv("DEPOSIT_MAX_ATTEMPTS", "24"), 24),
		},
		Session: SessionConfig{
			DBPath:      getEnv("SESSION_DB_PATH", "./db/sessions.db"),
			TTL:         parseDuration(getEnv("SESSION_TTL", "720h"), 720*time.Hour),
			CleanupCron: getEnv("SESSION_CLEANUP_CRON", "@hourly"),
		},
		Security: SecurityConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			MaxMessagesPerSecond: parseInt(getEnv("MAX_MESSAGES_PER_SECOND", "5"), 5),
		},
		Catalog: CatalogConfig{
			CacheTTL: parseDuration(getEnv("CATALOG_CACHE_TTL", "5m"), 5*time.Minute),
		},
		Lottery: LotteryConfig{
			AnnounceCron:     getEnv("LOTTERY_ANNOUNCE_CRON", ""),
			AnnounceGroupJID: getEnv("LOTTERY_ANNOUNCE_GROUP_JID", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.Deposit.MinAmount <= 0 {
		return fmt.Errorf("DEPOSIT_MIN_AMOUNT must be positive")
	}
	if c.Deposit.PollInterval <= 0 {
		return fmt.Errorf("DEPOSIT_POLL_INTERVAL must be positive")
	}
	if c.Deposit.MaxAttempts <= 0 {
		return fmt.Errorf("DEPOSIT_MAX_ATTEMPTS must be positive")
	}
	if c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive")
	}
	if c.Lottery.AnnounceCron != "" && c.Lottery.AnnounceGroupJID == "" {
		return fmt.Errorf("LOTTERY_ANNOUNCE_GROUP_JID is required when LOTTERY_ANNOUNCE_CRON is set")
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parseInt parses string to int with default value
func parseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseDuration parses string to time.Duration with default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// parseStringList parses comma-separated string to slice
func parseStringList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
