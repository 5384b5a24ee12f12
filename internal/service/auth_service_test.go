package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"expense-tracker/internal/dto"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Register(ctx, &dto.RegisterRequest{
		Email:    "  Ann@Example.COM ",
		FullName: "Ann",
		Password: "Secret!1",
	})
	if err != nil {
		t.Fatalf("Register error = %v", err)
	}

	claims, err := env.jwt.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken error = %v", err)
	}
	if claims.Email != "ann@example.com" {
		t.Errorf("email claim = %q, want normalized ann@example.com", claims.Email)
	}

	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "ANN@example.com", Password: "Secret!1"}); err != nil {
		t.Errorf("Login with correct password error = %v", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "ann@example.com", Password: "Secret!2"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "Secret!1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com")

	_, err := env.auth.Register(context.Background(), &dto.RegisterRequest{Email: "A@X.com", Password: "Other#99"})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("Register duplicate error = %v, want ErrUserExists", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"no at sign", dto.RegisterRequest{Email: "ann.example.com", Password: "Secret!1"}},
		{"short password", dto.RegisterRequest{Email: "ann@example.com", Password: "S!1"}},
		{"alphanumeric password", dto.RegisterRequest{Email: "ann@example.com", Password: "Secret11"}},
		{"email too long", dto.RegisterRequest{Email: strings.Repeat("a", 250) + "@x.com.ru", Password: "Secret!1"}},
		{"full name too long", dto.RegisterRequest{Email: "ann@example.com", FullName: strings.Repeat("n", 201), Password: "Secret!1"}},
	}
	for _, tc := range cases {
		_, err := env.auth.Register(context.Background(), &tc.req)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("%s: error = %v, want *ValidationError", tc.name, err)
		}
	}
}
