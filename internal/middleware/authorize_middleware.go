package middleware

import (
	"net/http"

	"go-hrms/internal/authz"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Authorize runs the capability check for a route. The gate holds the
// complete role-to-capability table, so no handler compares roles
// directly.
func Authorize(gate authz.Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr := c.GetString("role")
		role, ok := authz.ParseRole(roleStr)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := gate.Enforce(authz.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
