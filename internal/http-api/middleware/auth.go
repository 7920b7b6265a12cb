package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"servespot/internal/http-api/service"
	"servespot/internal/shared"
)

// AuthMiddleware is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the Authorization header.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// Set user info in context for handlers to use
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole checks if the authenticated user has the specified role.
func RequireRole(requiredRole shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "role not found in token"})
			c.Abort()
			return
		}

		userRole, ok := roleValue.(shared.Role)
		if !ok || !userRole.Valid() {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid role"})
			c.Abort()
			return
		}

		// admins pass every role gate
		if userRole != requiredRole && userRole != shared.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error":    "insufficient permissions",
				"required": requiredRole.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin is a convenience wrapper for admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(shared.RoleAdmin)
}

// CallerIdentity pulls the authenticated (role, id) pair out of the
// context. The second return is false when auth middleware did not run.
func CallerIdentity(c *gin.Context) (shared.Role, string, bool) {
	roleValue, okRole := c.Get("role")
	idValue, okID := c.Get("userID")
	if !okRole || !okID {
		return "", "", false
	}
	role, ok := roleValue.(shared.Role)
	if !ok {
		return "", "", false
	}
	id, ok := idValue.(string)
	if !ok {
		return "", "", false
	}
	return role, id, true
}
