package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/eaglebank/eagle-bank-api/internal/middleware"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/service"
	"github.com/eaglebank/eagle-bank-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// UserServicer defines the user operations used by UserHandler.
type UserServicer interface {
	Create(ctx context.Context, cmd service.CreateUserCommand) (*models.User, error)
	Get(ctx context.Context, q service.GetUserQuery) (*models.User, error)
	Update(ctx context.Context, cmd service.UpdateUserCommand) (*models.User, error)
	Delete(ctx context.Context, cmd service.DeleteUserCommand) error
	List(ctx context.Context) ([]models.User, error)
}

type UserHandler struct {
	users UserServicer
}

type CreateUserRequest struct {
	Name        string         `json:"name" validate:"required"`
	Email       string         `json:"email" validate:"required,bank_email"`
	Password    string         `json:"password" validate:"required,min=8"`
	PhoneNumber string         `json:"phoneNumber" validate:"required,uk_phone"`
	Address     models.Address `json:"address" validate:"required"`
}

type UpdateUserRequest struct {
	Name        string         `json:"name" validate:"required"`
	Email       string         `json:"email" validate:"required,bank_email"`
	PhoneNumber string         `json:"phoneNumber" validate:"required,uk_phone"`
	Address     models.Address `json:"address" validate:"required"`
}

type ListUsersResponse struct {
	Users []models.User `json:"users"`
}

func NewUserHandler(users UserServicer) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.CreateUserCommand{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			middleware.RespondWithError(c, http.StatusConflict, "Email address already in use")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("userId")
	if detail := validation.UserID(userID); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	user, err := h.users.Get(c.Request.Context(), service.GetUserQuery{
		UserID:    userID,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own user details")
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get user")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("userId")
	if detail := validation.UserID(userID); detail != nil {
		middleware.RespondWithValidationError(c, []validation.Detail{*detail})
		return
	}
	principal, _ := middleware.GetPrincipal(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	user, err := h.users.Update(c.Request.Context(), service.UpdateUserCommand{
		UserID:      userID,
		Principal:   principal,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "You can only update your own user details")
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrDuplicateEmail):
			middleware.RespondWithError(c, http.StatusConflict, "Email address already in use")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user. Admin only; the service checks the role before
// looking the user up so non-admins always see 403, never 404.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("userId")
	principal, _ := middleware.GetPrincipal(c)

	err := h.users.Delete(c.Request.Context(), service.DeleteUserCommand{
		UserID:    userID,
		Principal: principal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			middleware.RespondWithError(c, http.StatusForbidden, "Access denied: Insufficient permissions")
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrUserHasAccounts):
			middleware.RespondWithError(c, http.StatusConflict, "Cannot delete user with active bank accounts")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, ListUsersResponse{Users: users})
}
