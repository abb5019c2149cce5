package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type SuperUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	// TTLs are configured in minutes, matching the cookie max-age contract.
	SessionTTL    time.Duration
	ActivationTTL time.Duration

	CookieSecure bool

	// MaxConcurrentHashes bounds the password-hashing worker pool so the
	// deliberately slow Argon2id work cannot starve request handling.
	MaxConcurrentHashes int

	Superuser SuperUser
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:          time.Duration(getEnvInt("SESSION_TTL_MINUTES", 1440)) * time.Minute,
		ActivationTTL:       time.Duration(getEnvInt("ACTIVATION_TTL_MINUTES", 30)) * time.Minute,
		CookieSecure:        getEnvBool("COOKIE_SECURE", true),
		MaxConcurrentHashes: getEnvInt("MAX_CONCURRENT_HASHES", 4),
		Superuser: SuperUser{
			Email:     strings.TrimSpace(strings.ToLower(os.Getenv("SUPERUSER_EMAIL"))),
			Password:  os.Getenv("SUPERUSER_PASSWORD"),
			FirstName: getEnv("SUPERUSER_FIRST_NAME", "Admin"),
			LastName:  getEnv("SUPERUSER_LAST_NAME", "User"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.RedisURL == "" {
		errs = append(errs, "REDIS_URL is required")
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, "SESSION_TTL_MINUTES must be > 0")
	}
	if c.ActivationTTL <= 0 {
		errs = append(errs, "ACTIVATION_TTL_MINUTES must be > 0")
	}
	if c.MaxConcurrentHashes <= 0 {
		errs = append(errs, "MAX_CONCURRENT_HASHES must be > 0")
	}
	if c.Superuser.Email != "" && c.Superuser.Password == "" {
		errs = append(errs, "SUPERUSER_PASSWORD is required when SUPERUSER_EMAIL is set")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
