package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/utils"
)

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)
}

// UserService implements user lifecycle with role/ownership authorization.
// User creation is public onboarding; new users hold no role.
type UserService struct {
	users    UserStore
	accounts AccountStore
}

func NewUserService(users UserStore, accounts AccountStore) *UserService {
	return &UserService{users: users, accounts: accounts}
}

func (s *UserService) Create(ctx context.Context, cmd CreateUserCommand) (*models.User, error) {
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           utils.GenerateUserID(),
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  cmd.PhoneNumber,
		Address:      cmd.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user's details. Allowed for the user themself and for the
// admin and account-manager roles; the check runs before any lookup so a
// disallowed caller cannot learn whether the user exists.
func (s *UserService) Get(ctx context.Context, q GetUserQuery) (*models.User, error) {
	if !s.canAccessUser(q.Principal, q.UserID) {
		return nil, ErrForbidden
	}
	return s.users.GetByID(ctx, q.UserID)
}

func (s *UserService) Update(ctx context.Context, cmd UpdateUserCommand) (*models.User, error) {
	if !s.canAccessUser(cmd.Principal, cmd.UserID) {
		return nil, ErrForbidden
	}
	user, err := s.users.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	user.Name = cmd.Name
	user.Email = cmd.Email
	user.PhoneNumber = cmd.PhoneNumber
	user.Address = cmd.Address
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Admin only; the role gate runs strictly before the
// existence check so a non-admin cannot distinguish "forbidden" from
// "not found". Users still owning accounts cannot be deleted.
func (s *UserService) Delete(ctx context.Context, cmd DeleteUserCommand) error {
	if !cmd.Principal.HasRole(models.RoleAdmin) {
		return ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, cmd.UserID); err != nil {
		return err
	}
	count, err := s.accounts.CountByUser(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserHasAccounts
	}
	return s.users.Delete(ctx, cmd.UserID)
}

// List returns all users. Any authenticated principal may call it.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) canAccessUser(p auth.Principal, targetID string) bool {
	return p.UserID == targetID || p.HasAnyRole(models.RoleAdmin, models.RoleAccountManager)
}
