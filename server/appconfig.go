package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/worklens/dashgate/bootstrap"
	"github.com/worklens/dashgate/identity"
	"github.com/worklens/dashgate/store"
)

// AppConfig defines application configuration loaded from files and environment.
type AppConfig struct {
	Env    string `koanf:"env"`
	Listen string `koanf:"listen"`
	// LaunchURL lets a deployment hand the launch URL to the process
	// directly instead of waiting for the first page request.
	LaunchURL string         `koanf:"launch_url"`
	Assisted  AssistedConfig `koanf:"assisted"`
	Store     StoreConfig    `koanf:"store"`
	Database  DatabaseConfig `koanf:"database"`
	JWTKey    string         `koanf:"jwt_key"`
}

// AssistedConfig carries the non-production assists: a seed identity for
// local iteration and the admin job number override.
type AssistedConfig struct {
	Enabled    bool           `koanf:"enabled"`
	Seed       map[string]any `koanf:"seed"`
	AdminJobNo string         `koanf:"admin_job_no"`
}

// StoreConfig selects the identity store backend.
type StoreConfig struct {
	Backend    string `koanf:"backend"` // "buntdb" (default) or "valkey"
	Path       string `koanf:"path"`    // buntdb file, default dashgate.db
	ValkeyAddr string `koanf:"valkey_addr"`
	Prefix     string `koanf:"prefix"`
}

type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

var (
	cfgOnce sync.Once
	cfgInst *AppConfig
)

// GetConfig loads and returns the singleton AppConfig. Loading order:
// 1) config/config.yaml (optional)
// 2) config/config.<APP_ENV>.yaml (optional), APP_ENV defaults to "local"
// 3) Environment variables with prefix DASH_ mapped using __ as nested separator, e.g. DASH_STORE__VALKEY_ADDR
func GetConfig() *AppConfig {
	cfgOnce.Do(func() {
		k := koanf.New(".")
		// Config directory (CONFIG_DIR) default ./config
		configDir := os.Getenv("CONFIG_DIR")
		if configDir == "" {
			configDir = "config"
		}
		// Whether to load files (default: disabled to keep tests isolated)
		loadFiles := strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "1") || strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "true")
		// 1) base file
		if loadFiles {
			base := filepath.Join(configDir, "config.yaml")
			if _, err := os.Stat(base); err == nil {
				if err := k.Load(file.Provider(base), yaml.Parser()); err != nil {
					log.Printf("config: failed loading base: %v", err)
				}
			}
		}
		// 2) env-specific file
		envName := os.Getenv("APP_ENV")
		if envName == "" {
			envName = "local"
		}
		if loadFiles {
			envFile := filepath.Join(configDir, "config."+envName+".yaml")
			if _, err := os.Stat(envFile); err == nil {
				if err := k.Load(file.Provider(envFile), yaml.Parser()); err != nil {
					log.Printf("config: failed loading env file: %v", err)
				}
			}
		}
		// 3) env vars: DASH_ prefix, __ delim for nesting
		_ = k.Load(env.Provider("DASH_", ".", func(s string) string {
			// DASH_STORE__VALKEY_ADDR -> store.valkey_addr
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DASH_")), "__", ".")
		}), nil)

		var c AppConfig
		if err := k.Unmarshal("", &c); err != nil {
			log.Printf("config: unmarshal error: %v", err)
		}
		if c.Env == "" {
			c.Env = envName
		}
		if c.Listen == "" {
			c.Listen = ":8080"
		}
		cfgInst = &c
	})
	return cfgInst
}

// BootstrapConfig converts the assisted section into the value object the
// sequencer and resolver take. Assisted mode is forced off when the
// application environment says production, whatever the section claims.
func (c *AppConfig) BootstrapConfig() bootstrap.Config {
	assisted := c.Assisted.Enabled && !strings.EqualFold(c.Env, "production")
	cfg := bootstrap.Config{
		Assisted:   assisted,
		AdminJobNo: c.Assisted.AdminJobNo,
	}
	if len(c.Assisted.Seed) > 0 {
		cfg.Seed = identity.Record(c.Assisted.Seed)
	}
	return cfg
}

// StoreOptions derives the store options from the assisted section.
func (c *AppConfig) StoreOptions() store.Options {
	bc := c.BootstrapConfig()
	return store.Options{Assisted: bc.Assisted, Fallback: bc.Seed}
}
