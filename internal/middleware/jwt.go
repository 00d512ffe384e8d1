package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gtn-college/attendance-backend/internal/auth"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

const (
	// ContextRegisterNo is the key for the authenticated student's register number.
	ContextRegisterNo = "register_no"
	// ContextStudentName is the key for the authenticated student's name.
	ContextStudentName = "student_name"
)

// JWT returns a middleware that validates the bearer token and sets the student in context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextRegisterNo, claims.RegisterNo)
		c.Set(ContextStudentName, claims.Name)
		c.Next()
	}
}

// RegisterNo returns the authenticated student's register number, or "" outside JWT routes.
func RegisterNo(c *gin.Context) string {
	return c.GetString(ContextRegisterNo)
}
