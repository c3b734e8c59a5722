// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrConfiguration marks a fatal configuration problem detected at load time.
// The process must not open its listener when a load returns this error.
var ErrConfiguration = errors.New("configuration error")

// maxCredentialSlots bounds how many CREDENTIALS_<n> variables are read.
const maxCredentialSlots = 9

// Credential is one identity/secret pair from the environment.
type Credential struct {
	Identity string
	Secret   string
}

// LoadCredentials reads CREDENTIALS_1 through CREDENTIALS_9 and parses each
// present, non-empty value as "identity:secret". The split is on the first
// colon, so secrets may contain colons. A value with no colon fails the
// whole load (all-or-nothing); unset slots are skipped. Slot order is
// preserved in the result.
func LoadCredentials() ([]Credential, error) {
	var creds []Credential
	for i := 1; i <= maxCredentialSlots; i++ {
		key := fmt.Sprintf("CREDENTIALS_%d", i)
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		cred, err := ParseCredential(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// ParseCredential splits a raw "identity:secret" value on the first colon.
func ParseCredential(raw string) (Credential, error) {
	identity, secret, ok := strings.Cut(raw, ":")
	if !ok {
		return Credential{}, fmt.Errorf("%w: expected identity:secret pair", ErrConfiguration)
	}
	return Credential{Identity: identity, Secret: secret}, nil
}

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Mock data: how many vacancies the server seeds at startup.
	SeedVacancies int

	// Load generator settings.
	TargetURL   string
	Workers     int
	Pacing      time.Duration
	ListPage    int
	ListLimit   int
	CallTimeout time.Duration

	// Rate limiting (per client IP, disabled by default).
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:          envInt("VACANCYD_PORT", 8080),
		ReadTimeout:   envDuration("VACANCYD_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:  envDuration("VACANCYD_WRITE_TIMEOUT", 30*time.Second),
		SeedVacancies: envInt("VACANCYD_SEED_VACANCIES", 1000),
		TargetURL:     envStr("LOADGEN_TARGET_URL", "http://localhost:8080"),
		Workers:       envInt("LOADGEN_WORKERS", 4),
		Pacing:        envDuration("LOADGEN_PACING", 30*time.Second),
		ListPage:      envInt("LOADGEN_LIST_PAGE", 1),
		ListLimit:     envInt("LOADGEN_LIST_LIMIT", 100),
		CallTimeout:   envDuration("LOADGEN_CALL_TIMEOUT", 10*time.Second),
		RateLimitEnabled: envBool("VACANCYD_RATE_LIMIT_ENABLED", false),
		RateLimitRPS:     envFloat("VACANCYD_RATE_LIMIT_RPS", 100),
		RateLimitBurst:   envInt("VACANCYD_RATE_LIMIT_BURST", 200),

		OTELEndpoint:  envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:  envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:   envStr("OTEL_SERVICE_NAME", "vacancyload"),
		LogLevel:      envStr("VACANCYLOAD_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that settings are internally consistent.
func (c Config) Validate() error {
	if c.SeedVacancies < 0 {
		return fmt.Errorf("%w: VACANCYD_SEED_VACANCIES must be non-negative", ErrConfiguration)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: LOADGEN_WORKERS must be positive", ErrConfiguration)
	}
	if c.ListLimit <= 0 {
		return fmt.Errorf("%w: LOADGEN_LIST_LIMIT must be positive", ErrConfiguration)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("%w: rate limit rps and burst must be positive when enabled", ErrConfiguration)
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
