package middleware

import (
	"net/http"
	"strings"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// JWTAuth accepts a bearer token issued at login and puts the cashier's id,
// username and role on the context.
func JWTAuth(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortJSON(c, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := issuer.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserId)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func RoleFrom(c *gin.Context) access.Role {
	if v, ok := c.Get(ContextRole); ok {
		if r, ok := v.(access.Role); ok {
			return r
		}
	}
	return ""
}

func UserIDFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func RequireCapability(capability access.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !RoleFrom(c).Can(capability) {
			abortJSON(c, http.StatusForbidden, "Your role cannot "+strings.ReplaceAll(string(capability), "_", " "))
			return
		}
		c.Next()
	}
}
