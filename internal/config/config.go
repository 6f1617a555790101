package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	Environment   string
	LogLevel      string
	TopSoldLimit  int
	APIKeyHash    string
	Database      DatabaseConfig
	ChannelEngine ChannelEngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether an audit database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type ChannelEngineConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit RateLimitConfig
	Retry     RetryConfig
}

// RateLimitConfig admits Requests per Window with Burst requests allowed up front.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int
}

type RetryConfig struct {
	// TransientAttempts bounds retries of transport faults and upstream 5xx.
	TransientAttempts int
	// BackoffUnit is scaled by 2^attempt before each transient retry.
	BackoffUnit time.Duration
	// ThrottleWait is used when a rejection carries no retry-after hint.
	ThrottleWait time.Duration
	// ThrottleMaxAttempts caps throttling retries; 0 retries until canceled.
	ThrottleMaxAttempts int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	p := &parser{}
	cfg := &Config{
		Port:         getEnvOrViper("PORT", "5000"),
		Environment:  getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:     getEnvOrViper("LOG_LEVEL", "info"),
		TopSoldLimit: p.int("TOP_SOLD_LIMIT", 5),
		APIKeyHash:   getEnvOrViper("API_KEY_HASH", ""),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", ""),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "ordersbff"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		ChannelEngine: ChannelEngineConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("CHANNELENGINE_API_BASE_URL", "")),
			APIKey:  strings.TrimSpace(getEnvOrViper("CHANNELENGINE_API_KEY", "")),
			Timeout: p.duration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
			RateLimit: RateLimitConfig{
				Requests: p.int("RATE_LIMIT_REQUESTS", 100),
				Window:   p.duration("RATE_LIMIT_WINDOW", 60*time.Second),
				Burst:    p.int("RATE_LIMIT_BURST", 50),
			},
			Retry: RetryConfig{
				TransientAttempts:   p.int("RETRY_TRANSIENT_ATTEMPTS", 3),
				BackoffUnit:         p.duration("RETRY_BACKOFF_UNIT", time.Second),
				ThrottleWait:        p.duration("RETRY_THROTTLE_WAIT", 60*time.Second),
				ThrottleMaxAttempts: p.int("RETRY_THROTTLE_MAX_ATTEMPTS", 0),
			},
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	// Validate required fields
	if cfg.ChannelEngine.BaseURL == "" {
		return nil, fmt.Errorf("CHANNELENGINE_API_BASE_URL is required")
	}
	if cfg.ChannelEngine.APIKey == "" {
		return nil, fmt.Errorf("CHANNELENGINE_API_KEY is required")
	}
	if cfg.ChannelEngine.RateLimit.Requests <= 0 || cfg.ChannelEngine.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.ChannelEngine.RateLimit.Burst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	if cfg.ChannelEngine.Retry.BackoffUnit <= 0 {
		return nil, fmt.Errorf("RETRY_BACKOFF_UNIT must be positive")
	}
	if cfg.ChannelEngine.Retry.ThrottleWait <= 0 {
		return nil, fmt.Errorf("RETRY_THROTTLE_WAIT must be positive")
	}
	if cfg.ChannelEngine.Retry.TransientAttempts < 0 || cfg.ChannelEngine.Retry.ThrottleMaxAttempts < 0 {
		return nil, fmt.Errorf("RETRY_TRANSIENT_ATTEMPTS and RETRY_THROTTLE_MAX_ATTEMPTS must not be negative")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

func (p *parser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
