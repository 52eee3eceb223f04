package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"go-hrms/internal/authz"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the identity provider's token and places the
// caller's identity into the gin context. Token issuance happens
// elsewhere; this service only consumes the claims.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			code, msg := "INVALID_TOKEN", "Invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				code, msg = "TOKEN_EXPIRED", "Token has expired"
			}
			response.Error(c, http.StatusUnauthorized, code, msg, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "User ID not found in token", nil)
			c.Abort()
			return
		}

		roleClaim, _ := claims["role"].(string)
		role, ok := authz.ParseRole(roleClaim)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Unknown role in token", nil)
			c.Abort()
			return
		}

		// Admin accounts may not carry an employee profile.
		employeeID, _ := claims["employee_id"].(string)

		c.Set("user_id", userID)
		c.Set("employee_id", employeeID)
		c.Set("role", string(role))

		c.Next()
	}
}

// IdentityFromContext rebuilds the caller identity stored by
// AuthMiddleware.
func IdentityFromContext(c *gin.Context) authz.Identity {
	role, _ := authz.ParseRole(c.GetString("role"))
	return authz.Identity{
		UserID:     c.GetString("user_id"),
		EmployeeID: c.GetString("employee_id"),
		Role:       role,
	}
}
