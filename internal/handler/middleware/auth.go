package middleware

import (
	"net/http"
	"strings"

	"gin-auth-core/internal/handler/httperr"
	"gin-auth-core/internal/pkg/cookie"
	"gin-auth-core/internal/pkg/errs"
	"gin-auth-core/internal/usecase"

	"github.com/gin-gonic/gin"
)

var errUnauthenticated = errs.New("authentication required")

type AuthMiddleware struct {
	validator usecase.TokenValidator
}

func NewAuthMiddleware(validator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Authentication required", nil)
			return
		}

		userID, err := m.validator.ValidateAccessToken(token)
		if err != nil {
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// extractToken prefers the Authorization header, falling back to the
// HttpOnly access cookie set at login.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return cookie.GetAccessToken(c)
}
