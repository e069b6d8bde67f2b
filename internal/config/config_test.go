package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Mode: "development"},
		Auth:   AuthConfig{JWTSecret: DefaultJWTSecret, TokenDuration: time.Hour},
		Cache:  CacheConfig{Type: "none"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenDuration != 24*time.Hour {
		t.Errorf("expected 24h token duration, got %s", cfg.Auth.TokenDuration)
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("expected cookie name token, got %q", cfg.Auth.CookieName)
	}
	if cfg.Cache.Type != "none" {
		t.Errorf("expected cache type none, got %q", cfg.Cache.Type)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("QUILL_SERVER_PORT", "9090")
	t.Setenv("QUILL_AUTH_ALLOW_ROLE_SELECTION", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.AllowRoleSelection {
		t.Error("expected allow_role_selection from env")
	}
}

func TestValidate_RejectsDefaultSecretInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default secret in production")
	}

	cfg.Auth.JWTSecret = "something-long-and-random"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Cache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache = CacheConfig{Type: "valkey"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when valkey address is missing")
	}

	cfg.Cache = CacheConfig{Type: "memcached"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported cache type")
	}
}
