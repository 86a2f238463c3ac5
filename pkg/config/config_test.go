package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.App.Port)
	}
	if cfg.DB.DSN != defaultSQLiteDSN {
		t.Fatalf("expected sqlite default dsn, got %q", cfg.DB.DSN)
	}
	if cfg.Quotations.LocalCap != 50 {
		t.Fatalf("expected local cap 50, got %d", cfg.Quotations.LocalCap)
	}
	if cfg.Sessions.TTL != 24*time.Hour {
		t.Fatalf("expected session ttl 24h, got %v", cfg.Sessions.TTL)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without url")
	}
	if cfg.Notion.Enabled() {
		t.Fatalf("notion should be disabled without api key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvNotionAPIKey, "secret_abc")
	t.Setenv(EnvNotionItemsDB, "items-db")
	t.Setenv(EnvLocalCap, "10")
	t.Setenv(EnvSessionTTL, "2h")
	t.Setenv(EnvCORSOrigins, "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Redis.Enabled() || !cfg.Notion.Enabled() {
		t.Fatalf("expected redis and notion enabled")
	}
	if cfg.Notion.ItemsDatabaseID != "items-db" {
		t.Fatalf("unexpected items db %q", cfg.Notion.ItemsDatabaseID)
	}
	if cfg.Quotations.LocalCap != 10 || cfg.Sessions.TTL != 2*time.Hour {
		t.Fatalf("unexpected overrides %+v %+v", cfg.Quotations, cfg.Sessions)
	}
	if len(cfg.App.CORSOrigins) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.App.CORSOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_PostgresBuildsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDBDriver, "postgres")
	t.Setenv(EnvDBHost, "db.local")
	t.Setenv(EnvDBUser, "mepex")
	t.Setenv(EnvDBName, "cotizador")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !strings.HasPrefix(cfg.DB.DSN, "postgres://mepex@db.local:5432/cotizador") {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_PostgresWithoutHostFails(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDBDriver, "postgres")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), EnvDBHost) {
		t.Fatalf("expected missing host error, got %v", err)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvDBDriver, "mysql")
	t.Setenv(EnvDBDSN, "root@/cotizador")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvDBDriver, "sqlite")
	t.Setenv(EnvDBDSN, "")
	t.Setenv(EnvRedisURL, "")
	t.Setenv(EnvNotionAPIKey, "")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestMaxPDFBytes(t *testing.T) {
	if got := (QuotationsConfig{MaxPDFMB: 2}).MaxPDFBytes(); got != 2<<20 {
		t.Fatalf("unexpected max bytes %d", got)
	}
	if got := (QuotationsConfig{}).MaxPDFBytes(); got != 20<<20 {
		t.Fatalf("expected default 20MB, got %d", got)
	}
}
