package middleware

import (
	"net/http"
	"strings"

	"agroterms/services"

	"github.com/gin-gonic/gin"
)

const (
	AdminIDKey       = "admin_id"
	AdminUsernameKey = "admin_username"
)

// TokenParser validates an admin token.
type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// AdminAuth requires a valid "Bearer <token>" header and stores the admin in
// the context.
func AdminAuth(auth TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		tokenStr := header
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = parts[1]
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(AdminUsernameKey, claims.Username)
		c.Next()
	}
}

// AdminUsername returns the authenticated admin's name, or "system".
func AdminUsername(c *gin.Context) string {
	if name := c.GetString(AdminUsernameKey); name != "" {
		return name
	}
	return "system"
}
