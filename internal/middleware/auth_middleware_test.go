package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtAuthRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  30 * time.Minute,
		RefreshTokenExp: 168 * time.Hour,
		TokenIssuer:     "portal.test",
	})

	accessToken, _, _, _, err := jwtService.GenerateTokenPair(&models.Student{
		ID:    7,
		Email: "wkamau@students.jkuat.ac.ke",
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		studentID, ok := GetStudentID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"studentId": studentID})
	})

	return router, accessToken
}

func TestJWTAuth_BearerHeader(t *testing.T) {
	router, accessToken := jwtAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"studentId":7`)
}

func TestJWTAuth_CookieFallback(t *testing.T) {
	router, accessToken := jwtAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	router, _ := jwtAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	router, _ := jwtAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
