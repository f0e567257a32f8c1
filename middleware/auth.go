package middleware

import (
	"net/http"
	"strings"

	"quickbite-api/auth"
	"quickbite-api/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxClaimsKey = "claims"
	ctxUserIDKey = "userID"
	ctxRoleKey   = "role"
)

// AuthRequired validates the bearer token and injects claims into context
func AuthRequired(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header required (Bearer <token>)",
			})
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}
		c.Set(ctxClaimsKey, claims)
		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxRoleKey, string(claims.Role))
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ctxRoleKey)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Role not found in context",
			})
			c.Abort()
			return
		}
		callerRole := models.Role(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Access denied for your role",
		})
		c.Abort()
	}
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get(ctxUserIDKey)
	return val.(uint)
}

// GetClaims extracts the full token claims from context
func GetClaims(c *gin.Context) *auth.Claims {
	val, _ := c.Get(ctxClaimsKey)
	return val.(*auth.Claims)
}
