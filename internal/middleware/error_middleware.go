package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/jkusa/portal/internal/pkg/logger"
)

// HandleAPIError maps service errors onto HTTP responses with stable error
// codes. Messages and details from CustomError wrappers are carried through.
func HandleAPIError(c *gin.Context, err error) {
	status, code, message := classifyError(err)

	detail := dto.NewErrorDetail(code, message)

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		if customErr.Message != "" {
			detail.Message = customErr.Message
		}
		if customErr.Details != nil {
			detail.Details = customErr.Details
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
	}

	if status == http.StatusTooManyRequests {
		if retry, ok := detail.Details["retryAfterSeconds"].(int); ok {
			c.Header("Retry-After", strconv.Itoa(retry))
		}
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, dto.ErrorCode, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email/registration number or password"
	case errors.Is(err, apperrors.ErrAccountLocked):
		return http.StatusLocked, dto.ErrorCodeAccountLocked, "Account is temporarily locked"
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		return http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email address is not verified"
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		return http.StatusTooManyRequests, dto.ErrorCodeRateLimitExceeded, "Too many requests"

	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusGone, dto.ErrorCodeTokenExpired, "Token has expired"
	case errors.Is(err, apperrors.ErrTokenUsed):
		return http.StatusGone, dto.ErrorCodeTokenUsed, "Token has already been used"
	case errors.Is(err, apperrors.ErrTokenNotFound),
		errors.Is(err, apperrors.ErrTokenRevoked),
		errors.Is(err, apperrors.ErrTokenInvalid),
		errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.ErrorCodeEmailExists, "Email address is already registered"
	case errors.Is(err, apperrors.ErrRegNumberExists):
		return http.StatusConflict, dto.ErrorCodeRegNumberExists, "Registration number is already registered"
	case errors.Is(err, apperrors.ErrEmailAlreadyVerified):
		return http.StatusConflict, dto.ErrorCodeValidationFailed, "Email address is already verified"

	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrInvalidEmail),
		errors.Is(err, apperrors.ErrInvalidPassword),
		errors.Is(err, apperrors.ErrInvalidRegNumber),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Request validation failed"

	case errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrCollegeNotFound),
		errors.Is(err, apperrors.ErrSchoolNotFound),
		errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"

	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeValidationFailed, "Conflict"

	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"
	}
}
