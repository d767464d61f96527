package service

import (
	"context"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/utils"
)

// AuthService handles login and token refresh. These operations never mutate
// application state.
type AuthService struct {
	users  UserStore
	issuer *auth.TokenIssuer
	secret []byte
}

func NewAuthService(users UserStore, issuer *auth.TokenIssuer, secret []byte) *AuthService {
	return &AuthService{users: users, issuer: issuer, secret: secret}
}

// Login verifies credentials and issues a token carrying the user's roles.
func (s *AuthService) Login(ctx context.Context, cmd LoginCommand) (string, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	var roles []string
	if user.Role != "" {
		roles = []string{user.Role}
	}
	return s.issuer.Issue(user.ID, user.Email, roles)
}

// RefreshToken exchanges a still-valid token for a fresh one. Roles are
// re-read from the store so revoked roles don't survive a refresh.
func (s *AuthService) RefreshToken(ctx context.Context, cmd RefreshTokenCommand) (string, error) {
	principal, err := auth.Verify(cmd.Token, s.secret)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	var roles []string
	if user.Role != "" {
		roles = []string{user.Role}
	}
	return s.issuer.Issue(user.ID, user.Email, roles)
}
