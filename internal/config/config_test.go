package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every key so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_PORT", "ENV", "LOG_LEVEL", "LOG_FILE", "CATALOG_DIR", "CATALOG_CACHE",
		"LEAD_STORE", "LEAD_DIR", "LEAD_DB", "CORS_ORIGINS", "LEAD_RATE_PER_MIN", "TRUSTED_PROXIES"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.CatalogCache || cfg.CatalogDir != "" {
		t.Errorf("expected cached embedded catalogs, got %+v", cfg)
	}
	if cfg.LeadStore != StoreFile || cfg.LeadDir != "data/leads" {
		t.Errorf("unexpected lead defaults %+v", cfg)
	}
	if cfg.LeadRatePerMin != 20 {
		t.Errorf("expected rate 20, got %d", cfg.LeadRatePerMin)
	}
	if cfg.IsProduction() {
		t.Error("expected development mode")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "APP_PORT: \"9090\"\nLEAD_STORE: sqlite\nCORS_ORIGINS: \"https://glowheal.in, https://www.glowheal.in\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("APP_PORT", "7070")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != "7070" {
		t.Errorf("expected env to override file, got %q", cfg.AppPort)
	}
	if cfg.LeadStore != StoreSQLite {
		t.Errorf("expected sqlite from file, got %q", cfg.LeadStore)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode from env")
	}
	origins := cfg.Origins()
	if len(origins) != 2 || origins[1] != "https://www.glowheal.in" {
		t.Errorf("unexpected origins %v", origins)
	}
}

func TestTrustedProxies(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Proxies(); len(got) != 0 {
		t.Errorf("expected no trusted proxies by default, got %v", got)
	}

	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1,")
	cfg, err = Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := cfg.Proxies()
	if len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.168.1.1" {
		t.Errorf("unexpected proxies %v", got)
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEAD_STORE", "redis")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("APP_PORT: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed config")
	}
}
