package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farmassist/farmassist-backend/internal/data/repos"
	"github.com/farmassist/farmassist-backend/internal/pkg/apperr"
)

func newAuth(t *testing.T) (AuthService, testEnv) {
	t.Helper()
	env := newEnv(t)
	svc := NewAuthService(env.docs, repos.NewUserRepo(env.gdb, env.log), "test-secret", time.Hour, env.log)
	return svc, env
}

func TestRegisterLoginAndProfile(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "ramesh",
		Email:    "Ramesh@Example.com",
		Password: "secret123",
		FullName: "Ramesh Kumar",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected an id on the registered user")
	}
	if user.Email != "ramesh@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}

	result, err := svc.Login(ctx, "ramesh", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.ID != user.ID {
		t.Fatalf("login returned user %s, want %s", result.User.ID, user.ID)
	}

	sub, err := svc.ParseToken(result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if sub != user.ID {
		t.Fatalf("token subject %s, want %s", sub, user.ID)
	}

	profile, err := svc.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.FullName != "Ramesh Kumar" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ramesh", Email: "a@example.com", Password: "pw"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Username: "ramesh", Email: "b@example.com", Password: "pw"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRegisterDuplicateEmailReleasesUsername(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "first", Email: "shared@example.com", Password: "pw"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, RegisterInput{Username: "second", Email: "shared@example.com", Password: "pw"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The losing attempt must not leave its username reserved.
	if _, err := svc.Register(ctx, RegisterInput{Username: "second", Email: "other@example.com", Password: "pw"}); err != nil {
		t.Fatalf("register after rollback: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ramesh", Email: "r@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "nobody", "pw"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
	if _, err := svc.Login(ctx, "ramesh", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty input, got %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuth(t)
	if _, err := svc.ParseToken("not-a-token"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
