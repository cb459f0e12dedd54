// Package config loads service settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// devPlaceholderSecret is the signing secret that shipped in early
// development builds. It is refused everywhere.
const devPlaceholderSecret = "8Kj9mPq2v"

const minProductionSecretLen = 32

type Config struct {
	Port       string        `env:"PORT,         default=8081"`
	Env        string        `env:"ENV,          default=development"`
	LogLevel   string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret  string        `env:"JWT_SECRET,   required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,    default=24h"`
	BcryptCost int           `env:"BCRYPT_COST,  default=10"`
	CORSOrigin string        `env:"CORS_ALLOWED_ORIGIN, default=http://localhost:3000"`

	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Login    LoginConfig
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=postgres"`
}

type PostgresConfig struct {
	DSN string `env:"DATABASE_DSN"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=health_registry"`
}

// RedisConfig is optional; an empty Addr disables login throttling.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxFailures   int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	FailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration using lookuper (the process environment when nil)
// and validates it.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service must not start with.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case strings.TrimSpace(c.JWTSecret) == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case c.JWTSecret == devPlaceholderSecret:
		errs = append(errs, errors.New("JWT_SECRET is the development placeholder; set a real secret"))
	case !c.IsDevelopment() && len(c.JWTSecret) < minProductionSecretLen:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes outside development", minProductionSecretLen))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for the postgres store"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Redis.Addr != "" && (c.Login.MaxFailures <= 0 || c.Login.FailureWindow <= 0) {
		errs = append(errs, errors.New("LOGIN_MAX_FAILURES and LOGIN_FAILURE_WINDOW must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
