package config

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        int
	Host        string
	BaseURL     string
	AdminSecret string

	// Storage
	StorageBackend string // sqlite, redis or memory
	DatabasePath   string
	RedisURL       string
	StoreKey       string

	// Rewards
	StrictMode        bool
	RequireKnownEvent bool
	DailyRewardRate   decimal.Decimal
	ShareReward       decimal.Decimal

	// Rate Limiting
	ShareRateLimit  int // per window
	StakeRateLimit  int // per window
	RateLimitWindow time.Duration

	// Auth
	ChallengeTTL time.Duration
	TokenTTL     time.Duration

	// Logging
	LogLevel       string
	LogDevelopment bool
}

// Load reads configuration from the environment. Values that fail to parse
// fall back to their defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	return &Config{
		Port:              getEnvInt(v, "PORT", 8080),
		Host:              getEnv(v, "HOST", "0.0.0.0"),
		BaseURL:           getEnv(v, "BASE_URL", "http://localhost:8080"),
		AdminSecret:       getEnv(v, "ADMIN_SECRET", ""),
		StorageBackend:    getEnv(v, "STORAGE_BACKEND", "sqlite"),
		DatabasePath:      getEnv(v, "DATABASE_PATH", "scan2share.db"),
		RedisURL:          getEnv(v, "REDIS_URL", "redis://localhost:6379/0"),
		StoreKey:          getEnv(v, "STORE_KEY", "scan2share-store"),
		StrictMode:        getEnvBool(v, "STRICT_MODE", true),
		RequireKnownEvent: getEnvBool(v, "REQUIRE_KNOWN_EVENT", false),
		DailyRewardRate:   getEnvDecimal(v, "DAILY_REWARD_RATE", decimal.RequireFromString("0.02")),
		ShareReward:       getEnvDecimal(v, "SHARE_REWARD", decimal.NewFromInt(10)),
		ShareRateLimit:    getEnvInt(v, "SHARE_RATE_LIMIT", 30),
		StakeRateLimit:    getEnvInt(v, "STAKE_RATE_LIMIT", 60),
		RateLimitWindow:   getEnvDuration(v, "RATE_LIMIT_WINDOW", time.Hour),
		ChallengeTTL:      getEnvDuration(v, "CHALLENGE_TTL", 5*time.Minute),
		TokenTTL:          getEnvDuration(v, "TOKEN_TTL", 24*time.Hour),
		LogLevel:          getEnv(v, "LOG_LEVEL", "info"),
		LogDevelopment:    getEnvBool(v, "LOG_DEVELOPMENT", false),
	}
}

func getEnv(v *viper.Viper, key, defaultVal string) string {
	if val := v.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(v *viper.Viper, key string, defaultVal int) int {
	if val := v.GetString(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(v *viper.Viper, key string, defaultVal bool) bool {
	if val := v.GetString(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	if val := v.GetString(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvDecimal(v *viper.Viper, key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val := v.GetString(key); val != "" {
		if d, err := decimal.NewFromString(val); err == nil && !d.IsNegative() {
			return d
		}
	}
	return defaultVal
}
