package services

import (
	"time"

	"github.com/jkusa/portal/internal/app/repositories"
	"github.com/jkusa/portal/internal/config"
	"github.com/jkusa/portal/internal/pkg/auth"
	"github.com/jkusa/portal/internal/pkg/email"
	"github.com/rs/zerolog"
)

// SecurityPolicy holds the parsed account-security settings the auth service
// enforces.
type SecurityPolicy struct {
	AllowedEmailDomain    string
	MaxLoginAttempts      int
	LockoutDuration       time.Duration
	LoginRateLimit        int
	LoginRateWindow       time.Duration
	EmailActionRateLimit  int
	EmailActionRateWindow time.Duration
	VerificationTokenTTL  time.Duration
	ResetTokenTTL         time.Duration
}

// NewSecurityPolicy parses the security section of the configuration.
// Durations are validated at startup so a bad value fails fast.
func NewSecurityPolicy(cfg *config.Config) (SecurityPolicy, error) {
	lockout, err := time.ParseDuration(cfg.Security.LockoutDuration)
	if err != nil {
		return SecurityPolicy{}, err
	}
	rateWindow, err := time.ParseDuration(cfg.Security.RateLimitWindow)
	if err != nil {
		return SecurityPolicy{}, err
	}
	verificationTTL, err := time.ParseDuration(cfg.Security.VerificationTokenExpiry)
	if err != nil {
		return SecurityPolicy{}, err
	}
	resetTTL, err := time.ParseDuration(cfg.Security.PasswordResetTokenExpiry)
	if err != nil {
		return SecurityPolicy{}, err
	}
	emailActionWindow, err := time.ParseDuration(cfg.Security.EmailActionRateWindow)
	if err != nil {
		return SecurityPolicy{}, err
	}

	return SecurityPolicy{
		AllowedEmailDomain:    cfg.Security.AllowedEmailDomain,
		MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
		LockoutDuration:       lockout,
		LoginRateLimit:        cfg.Security.RateLimitRequests,
		LoginRateWindow:       rateWindow,
		EmailActionRateLimit:  cfg.Security.EmailActionRateLimit,
		EmailActionRateWindow: emailActionWindow,
		VerificationTokenTTL:  verificationTTL,
		ResetTokenTTL:         resetTTL,
	}, nil
}

// Services holds all the service instances
type Services struct {
	AuthService    *AuthService
	CatalogService *CatalogService
}

// NewServices initializes all services
func NewServices(
	repos *repositories.Repositories,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	policy SecurityPolicy,
	logger zerolog.Logger,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.StudentRepository,
			repos.VerificationTokenRepository,
			repos.PasswordResetTokenRepository,
			repos.RefreshTokenRepository,
			repos.CollegeRepository,
			repos.RateLimitRepository,
			jwtService,
			emailService,
			policy,
			logger,
		),
		CatalogService: NewCatalogService(repos.CollegeRepository),
	}
}
