package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/eagle-bank-api/internal/middleware"
	"github.com/eaglebank/eagle-bank-api/internal/service"
	"github.com/eaglebank/eagle-bank-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// AuthServicer defines the authentication operations used by AuthHandler.
type AuthServicer interface {
	Login(ctx context.Context, cmd service.LoginCommand) (string, error)
	RefreshToken(ctx context.Context, cmd service.RefreshTokenCommand) (string, error)
}

type AuthHandler struct {
	auth AuthServicer
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,bank_email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(auth AuthServicer) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	token, err := h.auth.Login(c.Request.Context(), service.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if details := validation.Validate(req); details != nil {
		middleware.RespondWithValidationError(c, details)
		return
	}

	token, err := h.auth.RefreshToken(c.Request.Context(), service.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
