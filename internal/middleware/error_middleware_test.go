package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performWithError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	t.Helper()

	router := gin.New()
	router.GET("/fail", func(c *gin.Context) {
		HandleAPIError(c, err)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleAPIError_StatusAndCodeMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"account locked", apperrors.ErrAccountLocked, http.StatusLocked, dto.ErrorCodeAccountLocked},
		{"account disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
		{"email not verified", apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified},
		{"rate limited", apperrors.ErrRateLimitExceeded, http.StatusTooManyRequests, dto.ErrorCodeRateLimitExceeded},
		{"token expired", apperrors.ErrTokenExpired, http.StatusGone, dto.ErrorCodeTokenExpired},
		{"token used", apperrors.ErrTokenUsed, http.StatusGone, dto.ErrorCodeTokenUsed},
		{"token not found", apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"token revoked", apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeEmailExists},
		{"reg number exists", apperrors.ErrRegNumberExists, http.StatusConflict, dto.ErrorCodeRegNumberExists},
		{"weak password", apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"college not found", apperrors.ErrCollegeNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := performWithError(t, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestHandleAPIError_CarriesCustomDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrAccountLocked, "Account is temporarily locked. Try again in 12 minute(s).").
		WithDetails(map[string]interface{}{"minutesRemaining": 12})

	w, body := performWithError(t, err)

	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Equal(t, "Account is temporarily locked. Try again in 12 minute(s).", body.Error.Message)
	assert.Equal(t, float64(12), body.Error.Details["minutesRemaining"])
}

func TestHandleAPIError_SetsRetryAfterHeader(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrRateLimitExceeded, "Too many requests. Try again later.").
		WithDetails(map[string]interface{}{"retryAfterSeconds": 42})

	w, _ := performWithError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))
}
