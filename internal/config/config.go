// Package config provides gateway configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the gateway configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Gateway   GatewayConfig
	Backend   BackendConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Pretty bool
}

// GatewayConfig holds the HTTP server configuration.
type GatewayConfig struct {
	Port        string        // Server port (default: 8080)
	ReadTimeout time.Duration // HTTP read timeout (default: 15s)
	// WriteTimeout defaults to 0 so open event streams are never cut off
	// by the server. Set it only when the stream relay is not used.
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: the local admin UI)
}

// BackendConfig holds the upstream CMS API configuration.
type BackendConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// AuthConfig holds session verification configuration.
type AuthConfig struct {
	// VerifyURL is the session verification endpoint. Defaults to
	// {backend}/session/verify when empty.
	VerifyURL string
	// SessionTTL is how long verified sessions stay in Redis (e.g. 5m).
	SessionTTL time.Duration
}

// RedisConfig holds the session cache connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig holds the resource cache tuning knobs.
type CacheConfig struct {
	// KeepUnusedFor is how long an entry without subscribers survives.
	KeepUnusedFor time.Duration
	// JanitorInterval is how often idle entries are swept.
	JanitorInterval time.Duration
}

// EventsConfig holds the notification stream relay configuration.
type EventsConfig struct {
	// UpstreamURL is the backend event stream. Defaults to
	// {backend}/notifications/stream when empty.
	UpstreamURL string
}

// RateLimitConfig bounds mutation traffic per client.
type RateLimitConfig struct {
	PerSecond int // Mutations allowed per second per client (default: 10)
	Burst     int // Burst allowance (default: 20)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logPretty := flag.String("log-pretty", "", "Human-readable console logs (default: false)")

	port := flag.String("port", "", "Gateway port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 0, streams stay open)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma-separated CORS origins")

	apiURL := flag.String("api-url", "", "Upstream CMS API base URL")
	userAgent := flag.String("user-agent", "", "User-Agent sent to the backend")
	backendTimeout := flag.String("backend-timeout", "", "Backend request timeout (default: 30s)")

	authURL := flag.String("auth-url", "", "Session verification endpoint")
	sessionTTL := flag.String("session-ttl", "", "Verified session cache lifetime (default: 5m)")

	redisAddr := flag.String("redis-addr", "", "Redis address for the session cache (default: localhost:6379)")
	redisPassword := flag.String("redis-password", "", "Redis password")
	redisDB := flag.String("redis-db", "", "Redis database number (default: 0)")

	keepUnusedFor := flag.String("keep-unused-for", "", "Idle cache entry lifetime (default: 60s)")
	janitorInterval := flag.String("janitor-interval", "", "Cache sweep interval (default: 15s)")

	eventsURL := flag.String("events-url", "", "Upstream notification stream URL")

	mutationRate := flag.String("mutation-rate", "", "Mutations per second per client (default: 10)")
	mutationBurst := flag.String("mutation-burst", "", "Mutation burst allowance (default: 20)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Pretty: getBoolConfigValue(*logPretty, "LOG_PRETTY", false),
		},
		Gateway: GatewayConfig{
			Port:           getConfigValue(*port, "GATEWAY_PORT", "8080"),
			AllowedOrigins: splitOrigins(getConfigValue(*allowedOrigins, "CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Backend: BackendConfig{
			BaseURL:   getConfigValue(*apiURL, "CMS_API_URL", "http://localhost:4000"),
			UserAgent: getConfigValue(*userAgent, "USER_AGENT", "tourwise-cms-gateway/1.0"),
		},
		Auth: AuthConfig{
			VerifyURL: getConfigValue(*authURL, "AUTH_VERIFY_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			Password: getConfigValue(*redisPassword, "REDIS_PASSWORD", ""),
			DB:       getIntConfigValue(*redisDB, "REDIS_DB", 0),
		},
		Events: EventsConfig{
			UpstreamURL: getConfigValue(*eventsURL, "EVENTS_UPSTREAM_URL", ""),
		},
		RateLimit: RateLimitConfig{
			PerSecond: getIntConfigValue(*mutationRate, "MUTATION_RATE", 10),
			Burst:     getIntConfigValue(*mutationBurst, "MUTATION_BURST", 20),
		},
	}

	var err error
	if cfg.Gateway.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Gateway.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Gateway.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}
	if cfg.Backend.Timeout, err = getDurationConfigValue(*backendTimeout, "BACKEND_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid backend timeout: %w", err)
	}
	if cfg.Auth.SessionTTL, err = getDurationConfigValue(*sessionTTL, "SESSION_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid session ttl: %w", err)
	}
	if cfg.Cache.KeepUnusedFor, err = getDurationConfigValue(*keepUnusedFor, "CACHE_KEEP_UNUSED_FOR", "60s"); err != nil {
		return nil, fmt.Errorf("invalid keep-unused-for: %w", err)
	}
	if cfg.Cache.JanitorInterval, err = getDurationConfigValue(*janitorInterval, "CACHE_JANITOR_INTERVAL", "15s"); err != nil {
		return nil, fmt.Errorf("invalid janitor interval: %w", err)
	}

	cfg.applyDerivedURLs()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyDerivedURLs fills the auth and event endpoints from the backend base
// URL when they were not configured explicitly.
func (c *Config) applyDerivedURLs() {
	base := strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Auth.VerifyURL == "" {
		c.Auth.VerifyURL = base + "/session/verify"
	}
	if c.Events.UpstreamURL == "" {
		c.Events.UpstreamURL = base + "/notifications/stream"
	}
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Gateway.Port == "" {
		return errors.New("gateway port is required")
	}

	if err := validateURL("api url", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := validateURL("auth url", c.Auth.VerifyURL); err != nil {
		return err
	}
	if err := validateURL("events url", c.Events.UpstreamURL); err != nil {
		return err
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.Auth.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}

	if c.RateLimit.PerSecond <= 0 {
		return errors.New("mutation rate must be positive")
	}
	if c.RateLimit.Burst < 1 {
		return errors.New("mutation burst must be at least 1")
	}

	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: host is missing", name, raw)
	}
	return nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue returns a duration from flag, env var, or default.
// Unlike the other helpers a malformed value is an error, not a silent
// fallback, because a mistyped timeout should never reach production.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q: %w", strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
