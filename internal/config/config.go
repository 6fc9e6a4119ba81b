// Package config loads service settings from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Lead store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	// CatalogDir overrides the embedded catalogs when set.
	CatalogDir   string `mapstructure:"CATALOG_DIR"`
	CatalogCache bool   `mapstructure:"CATALOG_CACHE"`

	LeadStore string `mapstructure:"LEAD_STORE"`
	LeadDir   string `mapstructure:"LEAD_DIR"`
	LeadDB    string `mapstructure:"LEAD_DB"`

	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`
	LeadRatePerMin int    `mapstructure:"LEAD_RATE_PER_MIN"`
	// TrustedProxies is a comma list of proxy IPs or CIDRs allowed to set
	// X-Forwarded-For. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Origins splits CORSOrigins on commas.
func (c *Config) Origins() []string {
	return splitList(c.CORSOrigins)
}

// Proxies splits TrustedProxies on commas.
func (c *Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Load reads config.yaml from the given directories (default "." and
// "./config"), applies environment overrides and defaults.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("CATALOG_DIR", "")
	v.SetDefault("CATALOG_CACHE", true)
	v.SetDefault("LEAD_STORE", StoreFile)
	v.SetDefault("LEAD_DIR", "data/leads")
	v.SetDefault("LEAD_DB", "data/leads/leads.db")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LEAD_RATE_PER_MIN", 20)
	v.SetDefault("TRUSTED_PROXIES", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch cfg.LeadStore {
	case StoreFile, StoreSQLite, StoreBolt:
	default:
		return nil, fmt.Errorf("invalid LEAD_STORE %q (use file, sqlite or bolt)", cfg.LeadStore)
	}
	if cfg.LeadRatePerMin < 0 {
		return nil, fmt.Errorf("invalid LEAD_RATE_PER_MIN %d", cfg.LeadRatePerMin)
	}
	return &cfg, nil
}
