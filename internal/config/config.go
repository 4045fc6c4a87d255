package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSessionSecret signs session cookies when SESSION_SECRET is unset.
const DevSessionSecret = "finsight-dev-session-secret-change-me"

type Config struct {
	// HTTP Server
	Port string

	// REST backend
	APIBaseURL string
	APITimeout time.Duration

	// Client session cookie
	SessionSecret string
	SessionSecure bool

	// Notification slot
	NotifyBackend string
	NotifyTTL     time.Duration
	RedisURL      string

	// AMQP activity events (disabled when AMQPURL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Pages
	TopRiskyCount int

	RateLimitRPM int
	LogLevel     string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:5000/api"),
		APITimeout: getEnvDuration("API_TIMEOUT", 0),

		SessionSecret: getEnv("SESSION_SECRET", DevSessionSecret),
		SessionSecure: getEnvBool("SESSION_SECURE", false),

		NotifyBackend: getEnv("NOTIFY_BACKEND", "memory"),
		NotifyTTL:     getEnvDuration("NOTIFY_TTL", 3*time.Second),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "finsight_activity"),

		TopRiskyCount: getEnvInt("TOP_RISKY_COUNT", 5),
		RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", 60),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if parsed, err := url.Parse(c.APIBaseURL); err != nil || c.APIBaseURL == "" {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	}

	if c.APITimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must not be negative", c.APITimeout))
	}

	if len(c.SessionSecret) < 32 {
		errors = append(errors, "session secret must be at least 32 bytes")
	}

	validBackends := []string{"memory", "redis"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.NotifyBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid notify backend '%s': must be one of %v", c.NotifyBackend, validBackends))
	}
	if c.NotifyBackend == "redis" && c.RedisURL == "" {
		errors = append(errors, "Redis URL cannot be empty when using redis notify backend")
	}

	if c.NotifyTTL < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid notify TTL %v: must be at least 100ms", c.NotifyTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.TopRiskyCount < 1 || c.TopRiskyCount > 100 {
		errors = append(errors, fmt.Sprintf("invalid top risky count %d: must be between 1 and 100", c.TopRiskyCount))
	}
	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitRPM))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// UsesDevSecret reports whether cookies are signed with the built-in secret.
func (c *Config) UsesDevSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
