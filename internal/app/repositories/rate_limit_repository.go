package repositories

import (
	"context"
	"fmt"
	"time"
)

// RateLimitRepository stores request counters in PostgreSQL so limits hold
// across multiple API instances.
type RateLimitRepository struct {
	db DB
}

// NewRateLimitRepository creates a new RateLimitRepository
func NewRateLimitRepository(db DB) *RateLimitRepository {
	return &RateLimitRepository{
		db: db,
	}
}

// Increment bumps the counter for a key within a fixed window and returns the
// resulting count plus time until the window resets. When the current window
// has lapsed the counter restarts at 1. The upsert decides between restart
// and increment inside one statement, so concurrent requests never lose
// counts.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	var count int
	var windowEnd time.Time

	err := r.db.QueryRow(ctx, `
		INSERT INTO rate_limit_counters (counter_key, count, window_end)
		VALUES ($1, 1, $2)
		ON CONFLICT (counter_key) DO UPDATE
		SET count = CASE WHEN rate_limit_counters.window_end < NOW() THEN 1 ELSE rate_limit_counters.count + 1 END,
			window_end = CASE WHEN rate_limit_counters.window_end < NOW() THEN $2 ELSE rate_limit_counters.window_end END
		RETURNING count, window_end`,
		key, time.Now().Add(window)).Scan(&count, &windowEnd)

	if err != nil {
		return 0, 0, fmt.Errorf("error incrementing rate counter: %w", err)
	}

	ttl := time.Until(windowEnd)
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}

// CleanupExpired deletes counters whose window has lapsed
func (r *RateLimitRepository) CleanupExpired(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM rate_limit_counters WHERE window_end < NOW()`)

	if err != nil {
		return 0, fmt.Errorf("error cleaning up rate counters: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
