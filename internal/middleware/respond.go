package middleware

import (
	"net/http"

	"github.com/eaglebank/eagle-bank-api/internal/validation"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body shape used by every endpoint.
type ErrorResponse struct {
	Message string             `json:"message"`
	Details []validation.Detail `json:"details,omitempty"`
}

// RespondWithError writes a plain error body.
func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Message: message})
}

// RespondWithValidationError writes a 400 with the aggregated detail list.
func RespondWithValidationError(c *gin.Context, details []validation.Detail) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: "Validation failed",
		Details: details,
	})
}

// RespondInsufficientFunds writes the 422 body for a rejected withdrawal.
func RespondInsufficientFunds(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Message: "Validation failed",
		Details: []validation.Detail{{
			Field:   "amount",
			Message: "Insufficient funds for this withdrawal",
			Type:    validation.TypeInsufficientFunds,
		}},
	})
}
