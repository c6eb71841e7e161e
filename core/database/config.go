package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

// Config holds database connection settings.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// URL takes precedence over the discrete postgres fields when set.
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	Path           string `yaml:"path" envconfig:"DB_PATH"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

// Normalize fills defaults and validates driver specific fields.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverPostgres
	}
	if c.Driver == "sqlite" {
		c.Driver = DriverSQLite
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
	switch c.Driver {
	case DriverPostgres:
		if c.URL != "" {
			return nil
		}
		if c.Host == "" || c.Name == "" {
			return fmt.Errorf("database.host and database.name are required for postgres (or set database.url)")
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
	case DriverSQLite:
		if c.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
		// SQLite allows a single writer.
		c.MaxConnections = 1
	case DriverMemory:
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: postgres, sqlite3, memory", c.Driver)
	}
	return nil
}

// DSN returns the driver-specific connection string for database/sql.
func (c Config) DSN() string {
	switch c.Driver {
	case DriverSQLite:
		return c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	default:
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
}

// MigrateURL returns the golang-migrate database URL.
func (c Config) MigrateURL() string {
	switch c.Driver {
	case DriverSQLite:
		return "sqlite3://" + c.Path
	default:
		if c.URL != "" {
			return c.URL
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + c.Port,
			Path:     "/" + c.Name,
			RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
		}
		return u.String()
	}
}

// Redacted describes the target without credentials, for logs.
func (c Config) Redacted() string {
	switch c.Driver {
	case DriverSQLite:
		return c.Path
	case DriverMemory:
		return "memory"
	}
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil {
			return u.Redacted()
		}
		return "postgres"
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}
