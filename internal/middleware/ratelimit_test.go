package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryRateStore_Increment(t *testing.T) {
	store := NewMemoryRateStore()

	count, ttl, err := store.Increment(context.Background(), "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Greater(t, ttl, time.Duration(0))

	count, _, err = store.Increment(context.Background(), "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Distinct keys count independently
	count, _, err = store.Increment(context.Background(), "other", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryRateStore_WindowReset(t *testing.T) {
	store := NewMemoryRateStore()

	for i := 0; i < 3; i++ {
		_, _, err := store.Increment(context.Background(), "key", 10*time.Millisecond)
		require.NoError(t, err)
	}

	time.Sleep(20 * time.Millisecond)

	count, _, err := store.Increment(context.Background(), "key", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "counter restarts after the window lapses")
}

func TestRateLimit_BlocksOverLimit(t *testing.T) {
	router := gin.New()
	router.POST("/login", RateLimit(NewMemoryRateStore(), 3, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d within limit", i+1)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_SeparateRoutesSeparateCounters(t *testing.T) {
	store := NewMemoryRateStore()
	router := gin.New()
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.POST("/login", RateLimit(store, 1, time.Minute), handler)
	router.POST("/register", RateLimit(store, 1, time.Minute), handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", nil))
	assert.Equal(t, http.StatusOK, w.Code, "limit on one route does not affect another")
}

type failingRateStore struct{}

func (failingRateStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, assert.AnError
}

func TestRateLimit_StoreFailureAllowsRequest(t *testing.T) {
	router := gin.New()
	router.POST("/login", RateLimit(failingRateStore{}, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
