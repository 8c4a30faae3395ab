package auth

import (
	"testing"
	"time"
)

func TestTokens_RoundTrip(t *testing.T) {
	t.Run("issued token verifies with its claims", func(t *testing.T) {
		tokens := NewTokens("test-secret", 2*time.Hour)

		raw, err := tokens.Issue("admin", "sess123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.Username != "admin" {
			t.Errorf("expected username admin, got %s", claims.Username)
		}
		if !claims.IsAdmin {
			t.Error("expected isAdmin claim")
		}
		if claims.SessionID != "sess123" {
			t.Errorf("expected session sess123, got %s", claims.SessionID)
		}
	})
}

func TestTokens_Verify(t *testing.T) {
	t.Run("rejects token signed with another secret", func(t *testing.T) {
		issuer := NewTokens("secret-a", 2*time.Hour)
		verifier := NewTokens("secret-b", 2*time.Hour)

		raw, err := issuer.Issue("admin", "sess")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := verifier.Verify(raw); err == nil {
			t.Error("expected verification failure for wrong secret")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		tokens := NewTokens("test-secret", 2*time.Hour)
		start := time.Now()
		current := start
		tokens.now = func() time.Time { return current }

		raw, err := tokens.Issue("admin", "sess")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		current = start.Add(2*time.Hour + time.Minute)
		if _, err := tokens.Verify(raw); err == nil {
			t.Error("expected verification failure after expiry")
		}

		current = start.Add(time.Hour + 59*time.Minute)
		if _, err := tokens.Verify(raw); err != nil {
			t.Errorf("expected token still valid at 1h59m, got %v", err)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		tokens := NewTokens("test-secret", 2*time.Hour)
		if _, err := tokens.Verify("not.a.token"); err == nil {
			t.Error("expected verification failure")
		}
	})
}
