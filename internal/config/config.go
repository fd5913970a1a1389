// Package config: process configuration read from .env files and environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config: runtime settings shared by the API server and the CSV importer
type Config struct {
	Addr    string `env:"ADDR" envDefault:":8080"`
	APIBase string `env:"API_BASE" envDefault:"/api"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/edmontonproperties.db"`

	PGHost         string `env:"PG_HOST" envDefault:"localhost"`
	PGPort         string `env:"PG_PORT" envDefault:"5432"`
	PGUser         string `env:"PG_USER" envDefault:"postgres"`
	PGPassword     string `env:"PG_PASSWORD"`
	PGDB           string `env:"PG_DB" envDefault:"properties"`
	PGSSLMode      string `env:"PG_SSLMODE" envDefault:"disable"`
	PGMaxOpenConns int    `env:"PG_MAX_OPEN_CONNS" envDefault:"50"`
	PGMaxIdleConns int    `env:"PG_MAX_IDLE_CONNS" envDefault:"25"`

	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost    string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort    string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass    string `env:"REDIS_PASS"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitQPS     int  `env:"RATE_LIMIT_QPS" envDefault:"200"`
	// TrustProxy: key the rate limiter on X-Forwarded-For / X-Real-IP; only behind a proxy that sets them
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	TLSEnable   bool   `env:"TLS_ENABLE" envDefault:"false"`
	TLSCertPath string `env:"TLS_CERT_PATH" envDefault:"data/certs/server.crt"`
	TLSKeyPath  string `env:"TLS_KEY_PATH" envDefault:"data/certs/server.key"`

	ImportBatchSize int           `env:"IMPORT_BATCH_SIZE" envDefault:"100"`
	ImportLockTTL   time.Duration `env:"IMPORT_LOCK_TTL" envDefault:"30m"`
}

// LoadDotEnv: load .env then data/env/.env; missing files are ignored and
// variables already present in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load: parse the environment into a Config and validate it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}
	if c.DBDriver == DriverSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return errors.New("SQLITE_PATH is required for the sqlite driver")
	}
	if !strings.HasPrefix(c.APIBase, "/") || strings.HasSuffix(c.APIBase, "/") {
		return fmt.Errorf("API_BASE must start and not end with '/', got %q", c.APIBase)
	}
	if c.ImportBatchSize <= 0 {
		return errors.New("IMPORT_BATCH_SIZE must be positive")
	}
	if c.RateLimitQPS <= 0 {
		return errors.New("RATE_LIMIT_QPS must be positive")
	}
	return nil
}

// PostgresDSN: connection URL assembled from the PG_* settings
func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.PGUser),
		Host:     c.PGHost + ":" + c.PGPort,
		Path:     "/" + c.PGDB,
		RawQuery: url.Values{"sslmode": {c.PGSSLMode}}.Encode(),
	}
	if c.PGPassword != "" {
		u.User = url.UserPassword(c.PGUser, c.PGPassword)
	}
	return u.String()
}

func (c Config) RedisAddr() string { return c.RedisHost + ":" + c.RedisPort }
