// Package config provides configuration loading for the snippets CLI.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the config and data directories.
const AppName = "snippets"

// Config holds the application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// path of the config file that was read, empty when none was found
	source string
}

// DatabaseConfig selects and locates the snippets database.
type DatabaseConfig struct {
	// Driver is "postgres", "sqlite" or "duckdb".
	Driver string `mapstructure:"driver"`

	// URL is a complete connection string. When set it wins over every
	// other field.
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`

	// Path is the database file for the embedded drivers.
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:  "postgres",
			Name:    "snippets",
			SSLMode: "disable",
		},
		Logging: LoggingConfig{
			File:   "snippets.log",
			Level:  "debug",
			Format: "text",
		},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/snippets.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDataPath returns the default database file for an embedded driver.
func DefaultDataPath(driver string) string {
	name := "snippets.db"
	if driver == "duckdb" {
		name = "snippets.duckdb"
	}
	return filepath.Join(xdg.DataHome, AppName, name)
}

// Load loads configuration from file and environment.
// Environment variables use the SNIPPETS_ prefix with dots replaced by
// underscores, e.g. SNIPPETS_DATABASE_DRIVER.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("SNIPPETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.source = v.ConfigFileUsed()

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.path", "")
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Source returns the config file that was read, or "" if none was found.
func (c *Config) Source() string {
	return c.source
}

// Embedded reports whether the driver keeps the database in a local file.
func (d DatabaseConfig) Embedded() bool {
	return d.Driver == "sqlite" || d.Driver == "duckdb"
}

// FilePath returns the database file of an embedded driver.
func (d DatabaseConfig) FilePath() string {
	if d.Path != "" {
		return d.Path
	}
	return DefaultDataPath(d.Driver)
}

// DSN renders the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Embedded() {
		return d.FilePath()
	}

	// lib/pq key/value form; unset fields fall back to libpq defaults and
	// the PG* environment variables.
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", key, quoteValue(value)))
		}
	}
	add("host", d.Host)
	if d.Port != 0 {
		add("port", fmt.Sprint(d.Port))
	}
	add("user", d.User)
	add("password", d.Password)
	add("dbname", d.Name)
	add("sslmode", d.SSLMode)
	return strings.Join(parts, " ")
}

// Redacted returns the DSN with any password masked, for display.
func (d DatabaseConfig) Redacted() string {
	dsn := d.DSN()
	if strings.Contains(dsn, "://") {
		u, err := url.Parse(dsn)
		if err != nil || u.User == nil {
			return dsn
		}
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
		return u.String()
	}
	if d.URL == "" && d.Password != "" {
		return strings.Replace(dsn, "password="+quoteValue(d.Password), "password=xxxxx", 1)
	}
	return dsn
}

// EnsureDataDir creates the directory holding an embedded database file.
func (d DatabaseConfig) EnsureDataDir() error {
	if !d.Embedded() || d.URL != "" {
		return nil
	}
	path := d.FilePath()
	if path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// quoteValue quotes a key/value DSN value when it contains spaces or quotes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
