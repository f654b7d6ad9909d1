package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.JWT.TTL != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %s", cfg.JWT.TTL)
	}
	if cfg.Mongo.Database != "crm" || !cfg.Mongo.Transactions {
		t.Fatalf("unexpected mongo defaults: %+v", cfg.Mongo)
	}
	if cfg.Login.MaxAttempts != 5 || cfg.Login.Window != 15*time.Minute {
		t.Fatalf("unexpected login defaults: %+v", cfg.Login)
	}
	if cfg.Admin.Username != "" {
		t.Fatalf("expected no bootstrap admin, got %q", cfg.Admin.Username)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development environment")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "secret",
		"JWT_TTL":            "1h",
		"ENV":                "production",
		"MONGO_TRANSACTIONS": "false",
		"LOGIN_MAX_ATTEMPTS": "3",
		"ADMIN_USERNAME":     "root",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.JWT.TTL != time.Hour || cfg.Mongo.Transactions || cfg.Login.MaxAttempts != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Admin.Username != "root" || cfg.IsDevelopment() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
