package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/auth"
	"github.com/jkusa/portal/internal/pkg/email"
	"github.com/jkusa/portal/internal/pkg/validation"
	"github.com/rs/zerolog"
)

// studentStore is the slice of the student repository the auth service needs
type studentStore interface {
	Create(ctx context.Context, student *models.Student) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	GetByLoginID(ctx context.Context, loginID string) (*models.Student, error)
	MarkVerified(ctx context.Context, studentID int64) error
	RecordFailedLogin(ctx context.Context, studentID int64, threshold int, lockedUntil time.Time) (int, *time.Time, error)
	RecordSuccessfulLogin(ctx context.Context, studentID int64) error
	UpdatePassword(ctx context.Context, studentID int64, hashedPassword string) error
}

// actionTokenStore covers the single-use email action tokens (verification
// and password reset share the same shape)
type actionTokenStore interface {
	Create(ctx context.Context, token string, studentID int64, expiryDate time.Time) error
	Consume(ctx context.Context, token string) (int64, error)
	InvalidateForStudent(ctx context.Context, studentID int64) error
}

type refreshTokenStore interface {
	Create(ctx context.Context, token string, studentID int64, expiryDate time.Time) error
	GetByValue(ctx context.Context, token string) (int64, time.Time, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForStudent(ctx context.Context, studentID int64) error
}

type catalogStore interface {
	SchoolBelongsToCollege(ctx context.Context, schoolID, collegeID int64) (bool, error)
}

type rateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error)
}

// AuthService implements registration, email verification, login with
// lockout, password reset and token lifecycle for student accounts.
type AuthService struct {
	students           studentStore
	verificationTokens actionTokenStore
	resetTokens        actionTokenStore
	refreshTokens      refreshTokenStore
	catalog            catalogStore
	rates              rateStore
	jwtService         *auth.JWTService
	emailService       email.EmailService
	policy             SecurityPolicy
	logger             zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	students studentStore,
	verificationTokens actionTokenStore,
	resetTokens actionTokenStore,
	refreshTokens refreshTokenStore,
	catalog catalogStore,
	rates rateStore,
	jwtService *auth.JWTService,
	emailService email.EmailService,
	policy SecurityPolicy,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		students:           students,
		verificationTokens: verificationTokens,
		resetTokens:        resetTokens,
		refreshTokens:      refreshTokens,
		catalog:            catalog,
		rates:              rates,
		jwtService:         jwtService,
		emailService:       emailService,
		policy:             policy,
		logger:             logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates a new unverified student account and sends a verification
// email. Email delivery failure does not roll the account back; the student
// can request a resend.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterStudentRequest) (*dto.RegisterResponse, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	ok, err := s.catalog.SchoolBelongsToCollege(ctx, req.SchoolID, req.CollegeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrSchoolNotFound
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	student := &models.Student{
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:        validation.NormalizePhone(req.PhoneNumber),
		RegistrationNumber: validation.NormalizeRegNumber(req.RegistrationNumber),
		CollegeID:          req.CollegeID,
		SchoolID:           req.SchoolID,
		Course:             strings.TrimSpace(req.Course),
		YearOfStudy:        req.YearOfStudy,
		HashedPassword:     hashedPassword,
		IsVerified:         false,
		IsActive:           true,
	}

	studentID, err := s.students.Create(ctx, student)
	if err != nil {
		return nil, err
	}
	student.ID = studentID

	emailSent := s.issueVerificationToken(ctx, student)

	s.logger.Info().
		Int64("studentID", studentID).
		Str("regNumber", student.RegistrationNumber).
		Bool("emailSent", emailSent).
		Msg("Student registered")

	return &dto.RegisterResponse{
		Success:   true,
		Message:   "Registration successful. Check your student email for a verification link.",
		Email:     student.Email,
		EmailSent: emailSent,
	}, nil
}

func (s *AuthService) validateRegistration(req *dto.RegisterStudentRequest) error {
	if !validation.ValidateName(req.FirstName) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "First name is invalid")
	}
	if !validation.ValidateName(req.LastName) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "Last name is invalid")
	}

	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.ValidateEmail(emailAddr) || !strings.HasSuffix(emailAddr, "@"+s.policy.AllowedEmailDomain) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail,
			fmt.Sprintf("A valid @%s address is required", s.policy.AllowedEmailDomain))
	}

	if !validation.ValidatePhone(req.PhoneNumber) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "Phone number is invalid")
	}
	if !validation.ValidateRegNumber(req.RegistrationNumber) {
		return apperrors.ErrInvalidRegNumber
	}
	if err := validation.ValidatePasswordStrength(req.Password); err != nil {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, err.Error())
	}

	return nil
}

// issueVerificationToken invalidates prior tokens, stores a fresh one and
// emails it. Returns whether the email went out.
func (s *AuthService) issueVerificationToken(ctx context.Context, student *models.Student) bool {
	if err := s.verificationTokens.InvalidateForStudent(ctx, student.ID); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to invalidate verification tokens")
		return false
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate verification token")
		return false
	}

	if err := s.verificationTokens.Create(ctx, token, student.ID, time.Now().Add(s.policy.VerificationTokenTTL)); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to store verification token")
		return false
	}

	if err := s.emailService.SendVerificationEmail(student.Email, student.FullName(), token); err != nil {
		s.logger.Error().Err(err).Str("email", student.Email).Msg("Failed to send verification email")
		return false
	}

	return true
}

// VerifyEmail consumes a verification token and activates the account's
// verified flag. Used and expired tokens are distinguished for the client.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	studentID, err := s.verificationTokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	if err := s.students.MarkVerified(ctx, studentID); err != nil {
		return err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err == nil {
		if sendErr := s.emailService.SendWelcomeEmail(student.Email, student.FullName()); sendErr != nil {
			s.logger.Warn().Err(sendErr).Int64("studentID", studentID).Msg("Failed to send welcome email")
		}
	}

	s.logger.Info().Int64("studentID", studentID).Msg("Email verified")
	return nil
}

// ResendVerification issues a fresh verification email. The response does not
// reveal whether the address is registered.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if err := s.enforceRate(ctx, "resend:"+emailAddr, s.policy.EmailActionRateLimit, s.policy.EmailActionRateWindow); err != nil {
		return err
	}

	student, err := s.students.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			// Same response as the registered case
			return nil
		}
		return err
	}

	if student.IsVerified {
		return apperrors.ErrEmailAlreadyVerified
	}

	s.issueVerificationToken(ctx, student)
	return nil
}

// Login validates credentials and issues a token pair. Checks run in a fixed
// order: rate limit, account state, lockout, password, verification. The
// password is always verified before the verification gate so an unverified
// response never confirms a password guess.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	loginID := strings.TrimSpace(req.LoginID)

	if err := s.enforceRate(ctx, "login:"+strings.ToLower(loginID), s.policy.LoginRateLimit, s.policy.LoginRateWindow); err != nil {
		return nil, err
	}

	student, err := s.students.GetByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, s.handleUnknownLogin(ctx, loginID)
		}
		return nil, err
	}

	if !student.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if student.IsLocked(time.Now()) {
		return nil, s.lockedError(*student.LockedUntil)
	}

	if !auth.CheckPassword(student.HashedPassword, req.Password) {
		return nil, s.handleFailedPassword(ctx, student)
	}

	if !student.IsVerified {
		emailSent := s.issueVerificationToken(ctx, student)
		return nil, apperrors.NewCustomError(apperrors.ErrEmailNotVerified,
			"Email address is not verified. A new verification link has been sent.").
			WithDetails(map[string]interface{}{"emailSent": emailSent})
	}

	if err := s.students.RecordSuccessfulLogin(ctx, student.ID); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to record successful login")
	}

	tokenResponse, err := s.issueTokenPair(ctx, student)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Msg("Student logged in")

	return &dto.AuthResponse{
		Success: true,
		Token:   *tokenResponse,
		Student: dto.NewStudentResponse(student),
	}, nil
}

func (s *AuthService) handleFailedPassword(ctx context.Context, student *models.Student) error {
	count, lockedUntil, err := s.students.RecordFailedLogin(ctx, student.ID,
		s.policy.MaxLoginAttempts, time.Now().Add(s.policy.LockoutDuration))
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to record failed login")
		return apperrors.ErrInvalidCredentials
	}

	if lockedUntil != nil && lockedUntil.After(time.Now()) {
		s.logger.Warn().Int64("studentID", student.ID).Time("lockedUntil", *lockedUntil).Msg("Account locked after repeated failures")
		return s.lockedError(*lockedUntil)
	}

	return s.invalidCredentialsError(s.policy.MaxLoginAttempts - count)
}

// handleUnknownLogin runs the same attempts countdown for login IDs that match
// no account, so the response never reveals whether the identity exists.
func (s *AuthService) handleUnknownLogin(ctx context.Context, loginID string) error {
	count, _, err := s.rates.Increment(ctx, "attempts:"+strings.ToLower(loginID), s.policy.LockoutDuration)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to track failed login for unknown identity")
		count = 1
	}

	if count >= s.policy.MaxLoginAttempts {
		return s.lockedError(time.Now().Add(s.policy.LockoutDuration))
	}

	return s.invalidCredentialsError(s.policy.MaxLoginAttempts - count)
}

func (s *AuthService) invalidCredentialsError(attemptsRemaining int) error {
	if attemptsRemaining < 0 {
		attemptsRemaining = 0
	}
	return apperrors.NewCustomError(apperrors.ErrInvalidCredentials,
		"Invalid email/registration number or password").
		WithDetails(map[string]interface{}{"attemptsRemaining": attemptsRemaining})
}

func (s *AuthService) lockedError(lockedUntil time.Time) error {
	minutes := int(math.Ceil(time.Until(lockedUntil).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return apperrors.NewCustomError(apperrors.ErrAccountLocked,
		fmt.Sprintf("Account is temporarily locked. Try again in %d minute(s).", minutes)).
		WithDetails(map[string]interface{}{"minutesRemaining": minutes})
}

func (s *AuthService) enforceRate(ctx context.Context, key string, limit int, window time.Duration) error {
	count, ttl, err := s.rates.Increment(ctx, key, window)
	if err != nil {
		// A broken rate store must not take login down with it
		s.logger.Error().Err(err).Str("key", key).Msg("Rate store failure, allowing request")
		return nil
	}

	if count > limit {
		return apperrors.NewCustomError(apperrors.ErrRateLimitExceeded,
			"Too many requests. Try again later.").
			WithDetails(map[string]interface{}{"retryAfterSeconds": int(math.Ceil(ttl.Seconds()))})
	}

	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, student *models.Student) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(student)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token pair: %w", err)
	}

	if err := s.refreshTokens.Create(ctx, refreshToken, student.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             expiresIn,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: refreshExpiresIn,
	}, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and a
// new pair is issued. A replayed token therefore fails with a token error.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	studentID, _, err := s.refreshTokens.GetByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if !student.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.refreshTokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokenPair(ctx, student)
}

// Logout revokes the presented refresh token. Revoking a token that is
// already gone is treated as success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.refreshTokens.Revoke(ctx, refreshToken)
	if err != nil && !errors.Is(err, apperrors.ErrTokenNotFound) {
		return err
	}
	return nil
}

// RequestPasswordReset starts the forgot-password flow. The caller always
// gets the same response whether or not the address is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if err := s.enforceRate(ctx, "reset:"+emailAddr, s.policy.EmailActionRateLimit, s.policy.EmailActionRateWindow); err != nil {
		return err
	}

	student, err := s.students.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil
		}
		return err
	}

	if !student.IsActive {
		return nil
	}

	if err := s.resetTokens.InvalidateForStudent(ctx, student.ID); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to invalidate reset tokens")
		return nil
	}

	token, err := auth.GenerateOpaqueToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate reset token")
		return nil
	}

	if err := s.resetTokens.Create(ctx, token, student.ID, time.Now().Add(s.policy.ResetTokenTTL)); err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to store reset token")
		return nil
	}

	if err := s.emailService.SendPasswordResetEmail(student.Email, student.FullName(), token); err != nil {
		s.logger.Error().Err(err).Str("email", student.Email).Msg("Failed to send password reset email")
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
// Every outstanding refresh token for the account is revoked.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePasswordStrength(newPassword); err != nil {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, err.Error())
	}

	studentID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.students.UpdatePassword(ctx, studentID, hashedPassword); err != nil {
		return err
	}

	if err := s.refreshTokens.RevokeAllForStudent(ctx, studentID); err != nil {
		s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Failed to revoke refresh tokens after reset")
	}

	s.logger.Info().Int64("studentID", studentID).Msg("Password reset completed")
	return nil
}

// ChangePassword changes the password of an authenticated student after
// re-verifying the current one. Other sessions are revoked.
func (s *AuthService) ChangePassword(ctx context.Context, studentID int64, currentPassword, newPassword string) error {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(student.HashedPassword, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	if err := validation.ValidatePasswordStrength(newPassword); err != nil {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword, err.Error())
	}

	if auth.CheckPassword(student.HashedPassword, newPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidPassword,
			"New password must be different from the current password")
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.students.UpdatePassword(ctx, studentID, hashedPassword); err != nil {
		return err
	}

	if err := s.refreshTokens.RevokeAllForStudent(ctx, studentID); err != nil {
		s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Failed to revoke refresh tokens after password change")
	}

	return nil
}

// GetProfile returns the public profile of a student
func (s *AuthService) GetProfile(ctx context.Context, studentID int64) (*dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewStudentResponse(student), nil
}
