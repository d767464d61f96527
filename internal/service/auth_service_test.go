package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/utils"
)

var authTestSecret = []byte("auth-service-test-secret")

func newAuthFixture(t *testing.T, user *models.User) (*AuthService, *mockUserStore) {
	t.Helper()
	users := &mockUserStore{
		getByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			if user != nil && email == user.Email {
				return user, nil
			}
			return nil, repository.ErrUserNotFound
		},
		getByIDFn: func(ctx context.Context, id string) (*models.User, error) {
			if user != nil && id == user.ID {
				return user, nil
			}
			return nil, repository.ErrUserNotFound
		},
	}
	issuer := auth.NewTokenIssuer(authTestSecret, "eagle-bank-api", time.Hour)
	return NewAuthService(users, issuer, authTestSecret), users
}

func hashedUser(t *testing.T, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("securepass123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &models.User{
		ID:           "usr-alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         role,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	svc, _ := newAuthFixture(t, hashedUser(t, models.RoleAdmin))

	token, err := svc.Login(context.Background(), LoginCommand{
		Email:    "alice@example.com",
		Password: "securepass123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := auth.Verify(token, authTestSecret)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if p.UserID != "usr-alice" {
		t.Errorf("expected subject usr-alice, got %q", p.UserID)
	}
	if !p.HasRole(models.RoleAdmin) {
		t.Errorf("expected admin role in token, got %v", p.Roles)
	}
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc, _ := newAuthFixture(t, hashedUser(t, ""))

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "wrongpass"},
		{"unknown email", "nobody@example.com", "securepass123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), LoginCommand{
				Email:    tt.email,
				Password: tt.password,
			})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthServiceRefreshReReadsRoles(t *testing.T) {
	user := hashedUser(t, models.RoleAdmin)
	svc, _ := newAuthFixture(t, user)

	token, err := svc.Login(context.Background(), LoginCommand{
		Email:    "alice@example.com",
		Password: "securepass123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Role revoked between login and refresh.
	user.Role = ""

	refreshed, err := svc.RefreshToken(context.Background(), RefreshTokenCommand{Token: token})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := auth.Verify(refreshed, authTestSecret)
	if err != nil {
		t.Fatalf("refreshed token failed verification: %v", err)
	}
	if p.HasRole(models.RoleAdmin) {
		t.Error("revoked role must not survive a refresh")
	}
}

func TestAuthServiceRefreshRejectsInvalidToken(t *testing.T) {
	svc, _ := newAuthFixture(t, hashedUser(t, ""))

	_, err := svc.RefreshToken(context.Background(), RefreshTokenCommand{Token: "not-a-token"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
