package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is used for every upstream call when API_BASE_URL is unset.
	DefaultAPIBaseURL = "http://localhost:5000"
	// DefaultListingBaseURL is the hosted catalog used by the experience list.
	DefaultListingBaseURL = "https://bookit-experiences-slots.onrender.com"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	APIBaseURL     string
	ListingBaseURL string
	APITimeout     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	SessionTTL   time.Duration
	CookieSecure bool
	CSRFAuthKey  string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	apiBase := getEnv("API_BASE_URL", DefaultAPIBaseURL)
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		APIBaseURL:     strings.TrimRight(apiBase, "/"),
		ListingBaseURL: strings.TrimRight(getEnv("LISTING_API_BASE_URL", DefaultListingBaseURL), "/"),
		APITimeout:     getEnvAsDuration("API_TIMEOUT", 15*time.Second),

		RedisAddr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SessionTTL:   getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
		CSRFAuthKey:  getEnv("CSRF_AUTH_KEY", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// IsProduction reports whether the server runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
