package middleware

import (
	"net/http"

	"pizza_service/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware lets the request through when the caller holds any of allowedRoles.
// Otherwise it answers 403 with message, which is route specific.
func RoleMiddleware(message string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		for _, role := range allowedRoles {
			if user.HasRole(role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": message})
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware(message string) gin.HandlerFunc {
	return RoleMiddleware(message, model.RoleAdmin)
}
