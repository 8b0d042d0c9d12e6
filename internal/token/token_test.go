package token

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	tok, exp, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(exp); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry %s from now", until)
	}

	sub, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %s", sub)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _, err := NewManager("secret-a", time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).Parse(tok); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	tok, _, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected expired token to fail parse")
	}
}

func TestParseRejectsTampering(t *testing.T) {
	m := NewManager("secret", time.Hour)
	tok, _, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected compact JWT, got %q", tok)
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := m.Parse(tampered); err == nil {
		t.Fatalf("expected tampered payload to fail parse")
	}
}

func TestNewResetToken(t *testing.T) {
	a, err := NewResetToken()
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	b, err := NewResetToken()
	if err != nil {
		t.Fatalf("reset token: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestNewOTPRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewOTP()
		if err != nil {
			t.Fatalf("otp: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("non-numeric otp %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("otp %d outside 100000-999999", n)
		}
	}
}
