package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/pkg/auth"
)

// ContextStudentIDKey is the gin context key holding the authenticated
// student's ID.
const ContextStudentIDKey = "studentID"

// AuthMiddleware guards endpoints that require an authenticated student
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth validates the access token from the Authorization header, falling
// back to the access_token cookie set by the browser login flow.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			extracted, err := auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortUnauthorized(c, "Invalid Authorization header format")
				return
			}
			tokenString = extracted
		} else if cookieToken, err := c.Cookie("access_token"); err == nil {
			tokenString = cookieToken
		}

		if tokenString == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextStudentIDKey, claims.StudentID)
		c.Next()
	}
}

// GetStudentID returns the authenticated student's ID from the context
func GetStudentID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(ContextStudentIDKey)
	if !exists {
		return 0, false
	}
	studentID, ok := value.(int64)
	return studentID, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, message)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}
