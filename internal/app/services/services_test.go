package services

import (
	"testing"
	"time"

	"github.com/jkusa/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func securityConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.AllowedEmailDomain = "students.jkuat.ac.ke"
	cfg.Security.MaxLoginAttempts = 5
	cfg.Security.LockoutDuration = "15m"
	cfg.Security.RateLimitRequests = 10
	cfg.Security.RateLimitWindow = "1m"
	cfg.Security.EmailActionRateLimit = 3
	cfg.Security.EmailActionRateWindow = "5m"
	cfg.Security.VerificationTokenExpiry = "24h"
	cfg.Security.PasswordResetTokenExpiry = "1h"
	return cfg
}

func TestNewSecurityPolicy(t *testing.T) {
	policy, err := NewSecurityPolicy(securityConfig())
	require.NoError(t, err)

	assert.Equal(t, 5, policy.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, policy.LockoutDuration)
	assert.Equal(t, 10, policy.LoginRateLimit)
	assert.Equal(t, time.Minute, policy.LoginRateWindow)
	assert.Equal(t, 3, policy.EmailActionRateLimit)
	assert.Equal(t, 5*time.Minute, policy.EmailActionRateWindow)
	assert.Equal(t, 24*time.Hour, policy.VerificationTokenTTL)
	assert.Equal(t, time.Hour, policy.ResetTokenTTL)
}

func TestNewSecurityPolicy_BadDuration(t *testing.T) {
	cfg := securityConfig()
	cfg.Security.EmailActionRateWindow = "five minutes"

	_, err := NewSecurityPolicy(cfg)
	assert.Error(t, err)
}
