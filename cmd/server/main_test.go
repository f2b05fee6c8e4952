package main

import (
	"testing"

	"rawbazaar/backend/internal/config"
)

func baseConfig() config.Config {
	return config.Config{AppEnv: "development", DemoUserType: "vendor", DemoUserID: 1}
}

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cfg := baseConfig()
	cfg.SessionSecret = "short"
	if err := validateSecurityConfig(cfg); err == nil {
		t.Fatalf("expected weak session secret to be rejected")
	}

	cfg = baseConfig()
	cfg.AppEnv = "production"
	if err := validateSecurityConfig(cfg); err == nil {
		t.Fatalf("expected missing production secret to be rejected")
	}

	cfg = baseConfig()
	cfg.DemoUserType = "admin"
	if err := validateSecurityConfig(cfg); err == nil {
		t.Fatalf("expected unknown demo user type to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	cfg := baseConfig()
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected development config without secret to pass, got %v", err)
	}

	cfg.AppEnv = "production"
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}
