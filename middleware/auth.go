package middleware

import (
	"net/http"
	"strings"

	"voltserve/models"
	"voltserve/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates the bearer token and injects the authenticated
// actor into the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		id, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "insufficient authorization"})
			return
		}

		actor := models.Actor{ID: id, Role: models.Role(role)}
		switch actor.Role {
		case models.RoleCustomer, models.RoleStaff, models.RoleTechnician, models.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role claim"})
			return
		}

		c.Set("actor", actor)
		c.Next()
	}
}
