package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CodeForFun2004/The-Chill-Cup-API/common/auth"
	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/gin-gonic/gin"
)

const (
	UserContextKey = "userID"
	RoleContextKey = "role"
)

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller's id
// and role on the context.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "UNAUTHORIZED"})
			return
		}

		claims, err := parser.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "UNAUTHORIZED"})
			return
		}

		c.Set(UserContextKey, claims.UserID)
		c.Set(RoleContextKey, NormalizeRole(claims.Role))
		c.Next()
	}
}

// NormalizeRole maps token roles onto the closed role set. Legacy "user"
// tokens and unknown roles are customers.
func NormalizeRole(role string) models.Role {
	switch models.Role(strings.ToLower(strings.TrimSpace(role))) {
	case models.RoleAdmin:
		return models.RoleAdmin
	case models.RoleStaff:
		return models.RoleStaff
	case models.RoleShipper:
		return models.RoleShipper
	default:
		return models.RoleCustomer
	}
}

// RequireRoles lets through only callers holding one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[GetRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions", "code": "FORBIDDEN"})
			return
		}
		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context.
func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}

// GetRole extracts the caller's role from the Gin context.
func GetRole(c *gin.Context) models.Role {
	if val, ok := c.Get(RoleContextKey); ok {
		if role, ok := val.(models.Role); ok {
			return role
		}
	}
	return ""
}
