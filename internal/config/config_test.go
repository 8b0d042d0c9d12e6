package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Fatalf("expected 10m OTP TTL, got %s", cfg.OTPTTL)
	}
	if cfg.ResetTokenTTL != time.Hour {
		t.Fatalf("expected 1h reset TTL, got %s", cfg.ResetTokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.Address())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected 1h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.OTPTTL != 5*time.Minute {
		t.Fatalf("expected 5m OTP TTL, got %s", cfg.OTPTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SESSION_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid SESSION_TTL")
	}
}
