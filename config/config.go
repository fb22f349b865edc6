// Package config provides configuration management for the packing assistant.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Packing  PackingConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	RateLimit       int
	RateWindow      time.Duration
	CORSOrigins     []string
	SwaggerUser     string
	SwaggerPass     string
	RequestTimeout  time.Duration
	// ShutdownTimeout bounds the graceful shutdown, draft flush included.
	ShutdownTimeout time.Duration
}

// CacheConfig holds the capacity-resolution cache configuration.
type CacheConfig struct {
	Size   int
	TTL    time.Duration
	Shards int
}

// AuthConfig holds authentication configuration. Operator tokens are issued
// by an external service and only validated here.
type AuthConfig struct {
	Enabled      bool
	APIKeys      map[string]bool
	JWTSecretKey string
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	LogsTTL      time.Duration
	Enabled      bool
	MaxPoolSize  uint64
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// PackingConfig holds packing session configuration.
type PackingConfig struct {
	// DraftDebounce is the quiet window before an edited session's draft is saved.
	DraftDebounce time.Duration
	// DefaultMaxPerBox is a comma separated CATALOG=MAX list seeded into an
	// empty capacity settings store on startup.
	DefaultMaxPerBox string
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// localOrigins are always allowed so the packing screen works in development.
var localOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Load reads the configuration from the environment. Unset or unparsable
// variables keep their defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:            env("PORT", "8080", asString),
			RateLimit:       env("RATE_LIMIT", 100, strconv.Atoi),
			RateWindow:      env("RATE_WINDOW", time.Minute, time.ParseDuration),
			CORSOrigins:     append(append([]string{}, localOrigins...), splitList(os.Getenv("CORS_ORIGINS"))...),
			SwaggerUser:     os.Getenv("SWAGGER_USER"),
			SwaggerPass:     os.Getenv("SWAGGER_PASS"),
			RequestTimeout:  env("REQUEST_TIMEOUT", 30*time.Second, time.ParseDuration),
			ShutdownTimeout: env("SHUTDOWN_TIMEOUT", 10*time.Second, time.ParseDuration),
		},
		Cache: CacheConfig{
			Size:   env("CACHE_SIZE", 1000, strconv.Atoi),
			TTL:    env("CACHE_TTL", 5*time.Minute, time.ParseDuration),
			Shards: env("CACHE_SHARDS", 16, strconv.Atoi),
		},
		Auth: AuthConfig{
			Enabled:      env("AUTH_ENABLED", false, strconv.ParseBool),
			APIKeys:      keySet(splitList(os.Getenv("API_KEYS"))),
			JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			URI:                            env("MONGODB_URI", "mongodb://localhost:27017", asString),
			DatabaseName:                   env("MONGODB_DATABASE", "pack_assistant", asString),
			LogsTTL:                        env("MONGODB_LOGS_TTL", 30*24*time.Hour, time.ParseDuration),
			Enabled:                        env("MONGODB_ENABLED", false, strconv.ParseBool),
			MaxPoolSize:                    env("MONGODB_MAX_POOL_SIZE", uint64(50), parseUint),
			CircuitBreakerFailureThreshold: env("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5, strconv.Atoi),
			CircuitBreakerSuccessThreshold: env("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2, strconv.Atoi),
			CircuitBreakerTimeout:          env("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second, time.ParseDuration),
		},
		Packing: PackingConfig{
			DraftDebounce:    env("DRAFT_DEBOUNCE", 750*time.Millisecond, time.ParseDuration),
			DefaultMaxPerBox: os.Getenv("DEFAULT_MAX_PER_BOX"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info", asString),
			Pretty: env("LOG_PRETTY", false, strconv.ParseBool),
		},
	}
}

// Validate reports settings the application cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT is empty"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.Server.RequestTimeout))
	}
	if c.Packing.DraftDebounce <= 0 {
		errs = append(errs, fmt.Errorf("DRAFT_DEBOUNCE must be positive, got %s", c.Packing.DraftDebounce))
	}
	if c.Cache.Size < 0 || c.Cache.Shards < 0 {
		errs = append(errs, errors.New("CACHE_SIZE and CACHE_SHARDS must not be negative"))
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 && c.Auth.JWTSecretKey == "" {
		errs = append(errs, errors.New("AUTH_ENABLED needs API_KEYS or JWT_SECRET_KEY"))
	}
	if c.Database.Enabled && c.Database.URI == "" {
		errs = append(errs, errors.New("MONGODB_ENABLED needs MONGODB_URI"))
	}
	return errors.Join(errs...)
}

func asString(v string) (string, error) { return v, nil }

func parseUint(v string) (uint64, error) { return strconv.ParseUint(v, 10, 64) }

// env parses the variable named key, falling back when it is unset or invalid.
func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func keySet(keys []string) map[string]bool {
	if len(keys) == 0 {
		return nil
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
