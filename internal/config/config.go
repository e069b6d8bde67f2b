package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing secret. It is refused in production mode.
const DefaultJWTSecret = "change-me-in-production"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`         // "development" or "production"
	FrontendURL string `mapstructure:"frontend_url"` // Allowed CORS origin
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Mode == "production"
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // gorm log level, defaults to log.level
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`     // Secret for JWT signing
	TokenDuration time.Duration `mapstructure:"token_duration"` // Token and cookie lifetime
	CookieName    string        `mapstructure:"cookie_name"`
	// AllowRoleSelection lets a registering user pick their own role.
	AllowRoleSelection bool `mapstructure:"allow_role_selection"`
}

// CacheConfig holds identity cache configuration
type CacheConfig struct {
	Type        string        `mapstructure:"type"`         // "none" or "valkey"
	ValkeyAddr  string        `mapstructure:"valkey_addr"`  // e.g. "localhost:6379"
	IdentityTTL time.Duration `mapstructure:"identity_ttl"` // How long a cached user row is trusted
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/quill/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./quill.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("database.log_level", "")
	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_duration", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "token")
	v.SetDefault("auth.allow_role_selection", false)
	v.SetDefault("cache.type", "none")
	v.SetDefault("cache.valkey_addr", "localhost:6379")
	v.SetDefault("cache.identity_ttl", 30*time.Second)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
}

// Validate rejects configurations that cannot be served safely.
func (c *Config) Validate() error {
	if c.Server.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return errors.New("auth.jwt_secret must be set in production mode")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive, got %s", c.Auth.TokenDuration)
	}
	switch c.Cache.Type {
	case "", "none":
	case "valkey":
		if c.Cache.ValkeyAddr == "" {
			return errors.New("cache.valkey_addr is required when cache.type is valkey")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s (supported: none, valkey)", c.Cache.Type)
	}
	return nil
}
