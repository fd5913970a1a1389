package config

import (
	"net/url"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Fatalf("driver = %q, want %q", cfg.DBDriver, DriverPostgres)
	}
	if cfg.Addr != ":8080" || cfg.APIBase != "/api" {
		t.Fatalf("addr/base = %q/%q", cfg.Addr, cfg.APIBase)
	}
	if cfg.ImportBatchSize != 100 {
		t.Fatalf("batch size = %d, want 100", cfg.ImportBatchSize)
	}
	if cfg.ImportLockTTL != 30*time.Minute {
		t.Fatalf("lock ttl = %v", cfg.ImportLockTTL)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestLoadRejectsBadBatchSize(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("IMPORT_BATCH_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected batch size error")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PGUser: "app", PGPassword: "secret", PGHost: "db", PGPort: "5433", PGDB: "props", PGSSLMode: "require"}
	want := "postgres://app:secret@db:5433/props?sslmode=require"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
	cfg.PGPassword = ""
	want = "postgres://app@db:5433/props?sslmode=require"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	cfg := Config{PGUser: "app", PGPassword: "p@ss/w:rd", PGHost: "db", PGPort: "5432", PGDB: "props", PGSSLMode: "disable"}
	u, err := url.Parse(cfg.PostgresDSN())
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	pass, _ := u.User.Password()
	if u.User.Username() != "app" || pass != "p@ss/w:rd" {
		t.Fatalf("credentials = %q/%q", u.User.Username(), pass)
	}
	if u.Host != "db:5432" || u.Path != "/props" || u.Query().Get("sslmode") != "disable" {
		t.Fatalf("dsn parts = %q %q %q", u.Host, u.Path, u.RawQuery)
	}
}

func TestValidateAPIBase(t *testing.T) {
	base := Config{DBDriver: DriverPostgres, ImportBatchSize: 1, RateLimitQPS: 1}
	for _, tc := range []struct {
		apiBase string
		ok      bool
	}{
		{"/api", true},
		{"/v1/api", true},
		{"/", false},
		{"/api/", false},
		{"api", false},
	} {
		cfg := base
		cfg.APIBase = tc.apiBase
		if err := cfg.Validate(); (err == nil) != tc.ok {
			t.Fatalf("Validate(API_BASE=%q) err = %v, want ok=%v", tc.apiBase, err, tc.ok)
		}
	}
}

func TestLoadTrustProxyDefaultsOff(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TrustProxy {
		t.Fatal("TRUST_PROXY should default to false")
	}
}
