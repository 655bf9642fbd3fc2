package server

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	token, err := issuer.Generate("alice")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	name, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if name != "alice" {
		t.Fatalf("PlayerName = %q, 期望 %q", name, "alice")
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	other := NewTokenIssuer("other-secret")
	foreign, _ := other.Generate("mallory")

	expired := NewTokenIssuer("test-secret")
	expired.ttl = -time.Minute
	stale, _ := expired.Generate("bob")

	tests := []struct {
		name  string
		token string
	}{
		{"空令牌", ""},
		{"格式错误", "not-a-jwt"},
		{"密钥不同", foreign},
		{"已过期", stale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, 期望 ErrInvalidToken", err)
			}
		})
	}
}
