package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application.
type Config struct {
	MediaWiki MediaWikiConfig
	Database  DatabaseConfig
	Discovery DiscoveryConfig
	Log       LogConfig
}

// MediaWikiConfig locates the MediaWiki configuration tree holding dblists.
type MediaWikiConfig struct {
	ConfigDir string `env:"MEDIAWIKI_CONFIG_DIR" envDefault:"/srv/mediawiki-config"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver         string        `env:"DB_DRIVER" envDefault:"mysql"`
	DefaultsFile   string        `env:"DB_DEFAULTS_FILE" envDefault:"/etc/mysql/conf.d/analytics-research-client.cnf"`
	Charset        string        `env:"DB_CHARSET" envDefault:"utf8mb4"`
	DSNTemplate    string        `env:"DB_DSN_TEMPLATE"` // Required for postgres and sqlite3
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"30m"`
	AutoMigrate    bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

// DiscoveryConfig holds section endpoint discovery configuration.
type DiscoveryConfig struct {
	Service    string        `env:"DISCOVERY_SERVICE" envDefault:"analytics"`
	Domain     string        `env:"DISCOVERY_DOMAIN" envDefault:"eqiad.wmnet"`
	Nameserver string        `env:"DISCOVERY_NAMESERVER"`
	ResolvConf string        `env:"DISCOVERY_RESOLV_CONF" envDefault:"/etc/resolv.conf"`
	Timeout    time.Duration `env:"DISCOVERY_TIMEOUT" envDefault:"5s"`
	// Static endpoints replace SRV lookups, e.g. "s1=127.0.0.1:3306,s3=127.0.0.1:3306".
	StaticEndpoints map[string]string `env:"DISCOVERY_STATIC_ENDPOINTS" envKeyValSeparator:"="`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.MediaWiki); err != nil {
		return nil, fmt.Errorf("parsing mediawiki config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Discovery); err != nil {
		return nil, fmt.Errorf("parsing discovery config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// UseStaticEndpoints returns true if section endpoints come from configuration
// instead of DNS.
func (c *Config) UseStaticEndpoints() bool {
	return len(c.Discovery.StaticEndpoints) > 0
}

// LogLevel returns the parsed log level.
func (c *LogConfig) LogLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.Level)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MediaWiki.ConfigDir == "" {
		return fmt.Errorf("MEDIAWIKI_CONFIG_DIR is required")
	}

	switch c.Database.Driver {
	case "mysql":
	case "postgres", "sqlite3":
		if c.Database.DSNTemplate == "" {
			return fmt.Errorf("DB_DSN_TEMPLATE is required for DB_DRIVER=%s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite3 (got %q)", c.Database.Driver)
	}
	if c.Database.QueryTimeout < 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must not be negative")
	}

	if !c.UseStaticEndpoints() {
		if c.Discovery.Service == "" {
			return fmt.Errorf("DISCOVERY_SERVICE is required (or set DISCOVERY_STATIC_ENDPOINTS)")
		}
		if c.Discovery.Domain == "" {
			return fmt.Errorf("DISCOVERY_DOMAIN is required (or set DISCOVERY_STATIC_ENDPOINTS)")
		}
	}

	if _, err := c.Log.LogLevel(); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json (got %q)", c.Log.Format)
	}

	return nil
}
