package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/pkg/logger"
)

// RateStore counts requests per key within a fixed window. The production
// implementation is backed by PostgreSQL so limits hold across instances;
// tests use the in-memory store.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// RateLimit limits requests per client IP and route. When the store fails
// the request is allowed; availability wins over strictness here.
func RateLimit(store RateStore, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP() + ":" + c.FullPath()

		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.Error().Err(err).Str("key", key).Msg("Rate store failure, allowing request")
			c.Next()
			return
		}

		if count > limit {
			retryAfter := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			detail := dto.NewErrorDetail(dto.ErrorCodeRateLimitExceeded, "Too many requests. Try again later.").
				WithDetails(map[string]interface{}{"retryAfterSeconds": retryAfter})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}

		c.Next()
	}
}

// MemoryRateStore is an in-process RateStore with fixed windows. Suitable
// for tests and single-instance deployments.
type MemoryRateStore struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore creates an empty in-memory rate store
func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{
		counters: make(map[string]*memoryCounter),
	}
}

// Increment bumps the counter for a key, restarting the window if it lapsed
func (s *MemoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	counter, ok := s.counters[key]
	if !ok || counter.windowEnd.Before(now) {
		counter = &memoryCounter{windowEnd: now.Add(window)}
		s.counters[key] = counter
	}

	counter.count++
	return counter.count, counter.windowEnd.Sub(now), nil
}
