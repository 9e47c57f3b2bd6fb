package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, err := manager.IssueToken("alice")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userID, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != "alice" {
		t.Errorf("expected subject alice, got %s", userID)
	}

	// Bearer prefix is tolerated
	userID, err = manager.ValidateToken("Bearer " + token)
	if err != nil || userID != "alice" {
		t.Errorf("bearer-prefixed token rejected: %v", err)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	t.Run("empty token", func(t *testing.T) {
		if _, err := manager.ValidateToken(""); !errors.Is(err, ErrEmptyToken) {
			t.Errorf("expected ErrEmptyToken, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := manager.ValidateToken("not.a.token"); err == nil {
			t.Error("garbage token must be rejected")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := other.IssueToken("alice")
		if err != nil {
			t.Fatalf("IssueToken failed: %v", err)
		}
		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("token signed with a different secret must be rejected")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute)
		token, err := expired.IssueToken("alice")
		if err != nil {
			t.Fatalf("IssueToken failed: %v", err)
		}
		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("expired token must be rejected")
		}
	})
}

func TestExtractTokenFromRequest(t *testing.T) {
	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token=abc", nil)
		if got := ExtractTokenFromRequest(r); got != "abc" {
			t.Errorf("expected abc, got %q", got)
		}
	})

	t.Run("authorization header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/channels", nil)
		r.Header.Set("Authorization", "Bearer xyz")
		if got := ExtractTokenFromRequest(r); got != "xyz" {
			t.Errorf("expected xyz, got %q", got)
		}
	})

	t.Run("query wins over header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?token=abc", nil)
		r.Header.Set("Authorization", "Bearer xyz")
		if got := ExtractTokenFromRequest(r); got != "abc" {
			t.Errorf("expected abc, got %q", got)
		}
	})

	t.Run("neither present", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws", nil)
		if got := ExtractTokenFromRequest(r); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "correct horse" {
		t.Fatal("password stored in the clear")
	}

	if !CheckPassword(hashed, "correct horse") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hashed, "wrong") {
		t.Error("wrong password accepted")
	}
}
