package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/app/services"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Minimal in-memory stores backing a real AuthService for handler tests

type stubStudents struct {
	student *models.Student
}

func (s *stubStudents) Create(context.Context, *models.Student) (int64, error) {
	return 0, apperrors.ErrEmailAlreadyExists
}

func (s *stubStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if s.student != nil && s.student.ID == id {
		return s.student, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *stubStudents) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	if s.student != nil && s.student.Email == email {
		return s.student, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *stubStudents) GetByLoginID(_ context.Context, loginID string) (*models.Student, error) {
	if s.student != nil && (s.student.Email == loginID || s.student.RegistrationNumber == loginID) {
		return s.student, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (s *stubStudents) MarkVerified(_ context.Context, _ int64) error {
	s.student.IsVerified = true
	return nil
}

func (s *stubStudents) RecordFailedLogin(context.Context, int64, int, time.Time) (int, *time.Time, error) {
	return 1, nil, nil
}

func (s *stubStudents) RecordSuccessfulLogin(context.Context, int64) error { return nil }

func (s *stubStudents) UpdatePassword(context.Context, int64, string) error { return nil }

type stubTokens struct {
	consumeID  int64
	consumeErr error
}

func (s *stubTokens) Create(context.Context, string, int64, time.Time) error { return nil }

func (s *stubTokens) Consume(context.Context, string) (int64, error) {
	return s.consumeID, s.consumeErr
}

func (s *stubTokens) InvalidateForStudent(context.Context, int64) error { return nil }

type stubRefresh struct{}

func (stubRefresh) Create(context.Context, string, int64, time.Time) error { return nil }
func (stubRefresh) GetByValue(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, apperrors.ErrTokenNotFound
}
func (stubRefresh) Revoke(context.Context, string) error             { return nil }
func (stubRefresh) RevokeAllForStudent(context.Context, int64) error { return nil }

type stubCatalog struct{}

func (stubCatalog) SchoolBelongsToCollege(context.Context, int64, int64) (bool, error) {
	return true, nil
}

type stubRates struct{}

func (stubRates) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 1, time.Minute, nil
}

type stubEmail struct{}

func (stubEmail) SendVerificationEmail(string, string, string) error { return nil }
func (stubEmail) SendWelcomeEmail(string, string) error              { return nil }
func (stubEmail) SendPasswordResetEmail(string, string, string) error { return nil }

type controllerFixture struct {
	router   *gin.Engine
	students *stubStudents
	verify   *stubTokens
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()

	hash, err := auth.HashPassword("Str0ng!Password")
	require.NoError(t, err)

	students := &stubStudents{student: &models.Student{
		ID:                 1,
		FirstName:          "Wanjiku",
		LastName:           "Kamau",
		Email:              "wkamau@students.jkuat.ac.ke",
		RegistrationNumber: "SCT211-0001/2021",
		HashedPassword:     hash,
		IsVerified:         true,
		IsActive:           true,
	}}
	verify := &stubTokens{consumeID: 1}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  30 * time.Minute,
		RefreshTokenExp: 168 * time.Hour,
		TokenIssuer:     "portal.test",
	})

	policy := services.SecurityPolicy{
		AllowedEmailDomain:    "students.jkuat.ac.ke",
		MaxLoginAttempts:      5,
		LockoutDuration:       15 * time.Minute,
		LoginRateLimit:        10,
		LoginRateWindow:       time.Minute,
		EmailActionRateLimit:  3,
		EmailActionRateWindow: 5 * time.Minute,
		VerificationTokenTTL:  24 * time.Hour,
		ResetTokenTTL:         time.Hour,
	}

	authService := services.NewAuthService(
		students, verify, &stubTokens{}, stubRefresh{},
		stubCatalog{}, stubRates{}, jwtService, stubEmail{}, policy, zerolog.Nop())

	controller := NewAuthController(authService, false, zerolog.Nop())

	router := gin.New()
	router.POST("/login", controller.Login)
	router.POST("/verify", controller.VerifyEmail)
	router.GET("/verify", controller.VerifyEmail)

	return &controllerFixture{router: router, students: students, verify: verify}
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestLoginHandler_SuccessSetsCookies(t *testing.T) {
	f := newControllerFixture(t)

	w := postJSON(f.router, "/login", dto.LoginRequest{
		LoginID:  "wkamau@students.jkuat.ac.ke",
		Password: "Str0ng!Password",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Token.AccessToken)
	assert.Equal(t, int64(1), response.Student.ID)

	cookies := w.Result().Cookies()
	names := make(map[string]*http.Cookie, len(cookies))
	for _, cookie := range cookies {
		names[cookie.Name] = cookie
	}
	require.Contains(t, names, "access_token")
	require.Contains(t, names, "refresh_token")
	assert.True(t, names["access_token"].HttpOnly)
	assert.True(t, names["refresh_token"].HttpOnly)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	f := newControllerFixture(t)

	w := postJSON(f.router, "/login", dto.LoginRequest{
		LoginID:  "wkamau@students.jkuat.ac.ke",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLoginHandler_LockedAccount(t *testing.T) {
	f := newControllerFixture(t)
	lockedUntil := time.Now().Add(10 * time.Minute)
	f.students.student.LockedUntil = &lockedUntil

	w := postJSON(f.router, "/login", dto.LoginRequest{
		LoginID:  "wkamau@students.jkuat.ac.ke",
		Password: "Str0ng!Password",
	})

	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_LOCKED")
	assert.Contains(t, w.Body.String(), "minutesRemaining")
}

func TestLoginHandler_MissingFields(t *testing.T) {
	f := newControllerFixture(t)

	w := postJSON(f.router, "/login", map[string]string{"loginId": "wkamau@students.jkuat.ac.ke"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestVerifyHandler_QueryParamFallback(t *testing.T) {
	f := newControllerFixture(t)
	f.students.student.IsVerified = false

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/verify?token=tok-123", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.students.student.IsVerified)
}

func TestVerifyHandler_ExpiredToken(t *testing.T) {
	f := newControllerFixture(t)
	f.verify.consumeErr = apperrors.ErrTokenExpired

	w := postJSON(f.router, "/verify", dto.VerifyEmailRequest{Token: "tok-old"})

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}
