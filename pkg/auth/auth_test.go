package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("Secret!1")
	if err != nil {
		t.Fatalf("HashPassword error = %v", err)
	}
	if !strings.HasPrefix(hashed, "$2") {
		t.Errorf("hash %q is not bcrypt", hashed)
	}

	again, _ := HashPassword("Secret!1")
	if hashed == again {
		t.Error("same password produced identical hashes, want random salt")
	}

	if _, err := HashPassword(""); err == nil {
		t.Error("HashPassword(\"\") error = nil, want error")
	}
}

func TestCheckPasswordHash(t *testing.T) {
	hashed, _ := HashPassword("Secret!1")

	if !CheckPasswordHash("Secret!1", hashed) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("secret!1", hashed) {
		t.Error("wrong password accepted")
	}
	if CheckPasswordHash("", hashed) {
		t.Error("empty password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123", "issuer", "aud", time.Hour)

	token, err := m.GenerateToken("user-1", "a@x.com", "Ann")
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@x.com" || claims.Subject != "user-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("0123456789abcdef0123", "issuer", "aud", time.Hour)
	token, _ := m.GenerateToken("user-1", "a@x.com", "")

	otherSecret := NewJWTManager("another-secret-value-xx", "issuer", "aud", time.Hour)
	otherIssuer := NewJWTManager("0123456789abcdef0123", "someone-else", "aud", time.Hour)
	otherAudience := NewJWTManager("0123456789abcdef0123", "issuer", "mobile", time.Hour)

	expired := NewJWTManager("0123456789abcdef0123", "issuer", "aud", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	cases := []struct {
		name string
		m    *JWTManager
		tok  string
	}{
		{"wrong secret", otherSecret, token},
		{"wrong issuer", otherIssuer, token},
		{"wrong audience", otherAudience, token},
		{"expired", expired, token},
		{"garbage", m, "not.a.token"},
	}
	for _, tc := range cases {
		if _, err := tc.m.ValidateToken(tc.tok); err == nil {
			t.Errorf("%s: ValidateToken error = nil, want error", tc.name)
		}
	}
}
