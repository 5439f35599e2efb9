// Package config loads the server configuration from CHEST_ prefixed
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
)

// Store backends.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the configuration for the chest server.
// Example: CHEST_MONGODB_URI, CHEST_GRPC_PORT, CHEST_JWT_KEYS.
type Config struct {
	// Store selects the persistence backend: mongo or memory (development only)
	Store string `envconfig:"STORE" default:"mongo"`

	MongoURI      string `envconfig:"MONGODB_URI"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"chest_db"`

	// JWT: either a single secret or rotated keys "kid:secret,kid2:secret2"
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	JWTKeys      string        `envconfig:"JWT_KEYS"`
	JWTActiveKid string        `envconfig:"JWT_ACTIVE_KID"`
	TokenTTL     time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	GRPCPort    int    `envconfig:"GRPC_PORT" default:"50051"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	TLSCert    string `envconfig:"TLS_CERT"`
	TLSKey     string `envconfig:"TLS_KEY"`
	RequireTLS bool   `envconfig:"REQUIRE_TLS" default:"false"`

	// RateLimitRPM limits Register, Login and Pair per username or peer
	RateLimitRPM   int `envconfig:"RATE_LIMIT_RPM" default:"10"`
	RateLimitBurst int `envconfig:"RATE_LIMIT_BURST" default:"3"`

	// RedisURL enables the distributed lock; empty keeps locking in-process
	RedisURL string        `envconfig:"REDIS_URL"`
	LockTTL  time.Duration `envconfig:"LOCK_TTL" default:"10s"`

	// SweepInterval of 0 disables the background sweep
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	// DayLength shortens chest days for development and demos
	DayLength time.Duration `envconfig:"DAY_LENGTH" default:"24h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// New parses the environment and validates the result.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses the environment without validating it. Tools that only touch
// storage call ValidateStorage instead of Validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("CHEST", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// ValidateStorage checks the store and day length settings.
func (c *Config) ValidateStorage() error {
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("CHEST_MONGODB_URI must be set when CHEST_STORE=%s", StoreMongo)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported CHEST_STORE: %s", c.Store)
	}
	if c.DayLength <= 0 {
		return fmt.Errorf("CHEST_DAY_LENGTH must be positive")
	}
	return nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}

	if c.JWTSecret == "" && c.JWTKeys == "" {
		return fmt.Errorf("either CHEST_JWT_SECRET or CHEST_JWT_KEYS must be set")
	}
	if c.JWTKeys != "" {
		if _, err := auth.ParseKeys(c.JWTKeys); err != nil {
			return fmt.Errorf("invalid CHEST_JWT_KEYS: %w", err)
		}
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("CHEST_TLS_CERT and CHEST_TLS_KEY must be set together")
	}
	if c.RequireTLS && c.TLSCert == "" {
		return fmt.Errorf("CHEST_REQUIRE_TLS is true but CHEST_TLS_CERT/CHEST_TLS_KEY are not configured")
	}

	if c.SweepInterval < 0 {
		return fmt.Errorf("CHEST_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

// JWTManager builds the token manager from the configured secret or keys.
func (c *Config) JWTManager() (*auth.JWTManager, error) {
	if c.JWTKeys == "" {
		return auth.NewJWTManager(c.JWTSecret, c.TokenTTL), nil
	}
	keys, err := auth.ParseKeys(c.JWTKeys)
	if err != nil {
		return nil, err
	}
	return auth.NewJWTManagerFromKeys(keys, c.JWTActiveKid, c.TokenTTL), nil
}

// GRPCAddr returns the gRPC listen address.
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// TLSEnabled reports whether the gRPC server should serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
