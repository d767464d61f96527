package middleware

import (
	"net/http"
	"strings"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Auth verifies the bearer token and stores the resulting principal in the
// request context. Requests without a valid token are rejected with 401.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		principal, err := auth.Verify(parts[1], secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}
		if principal.UserID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "User ID not found in token",
			})
			c.Abort()
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal stores a principal in the request context. Exposed so tests
// can stand in for Auth.
func SetPrincipal(c *gin.Context, principal auth.Principal) {
	c.Set(principalKey, principal)
}

// GetPrincipal returns the principal stored by Auth.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	return principal, ok
}
