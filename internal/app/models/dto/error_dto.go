package dto

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Error codes returned by the API. Clients branch on these, so they are part
// of the wire contract and must stay stable.
const (
	// Authentication
	ErrorCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeAccountLocked      ErrorCode = "ACCOUNT_LOCKED"
	ErrorCodeAccountDisabled    ErrorCode = "ACCOUNT_DISABLED"
	ErrorCodeEmailNotVerified   ErrorCode = "EMAIL_NOT_VERIFIED"
	ErrorCodeUnauthorized       ErrorCode = "UNAUTHORIZED"

	// Tokens
	ErrorCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrorCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrorCodeTokenUsed    ErrorCode = "TOKEN_USED"

	// Rate limiting
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Registration conflicts
	ErrorCodeEmailExists     ErrorCode = "EMAIL_EXISTS"
	ErrorCodeRegNumberExists ErrorCode = "REG_NUMBER_EXISTS"

	// Validation and resources
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeResourceNotFound ErrorCode = "NOT_FOUND"
	ErrorCodeInternalServer   ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    ErrorCode              `json:"code" example:"INVALID_CREDENTIALS"`
	Message string                 `json:"message" example:"Invalid email/registration number or password"`
	Field   string                 `json:"field,omitempty" example:"email"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2026-08-29T12:01:05.123Z"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:    code,
		Message: message,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithDetails attaches structured context to the error detail
func (e *ErrorDetail) WithDetails(details map[string]interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse creates a new error response with the current timestamp
func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}

// HandleValidationError converts binding errors into a 400 response listing
// the first offending field.
func HandleValidationError(c *gin.Context, err error) {
	detail := NewErrorDetail(ErrorCodeValidationFailed, "Request validation failed")

	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		detail.Message = "Invalid value for field '" + fieldErr.Field() + "'"
		detail.Field = fieldErr.Field()
	} else if err != nil {
		detail.Message = err.Error()
	}

	c.JSON(http.StatusBadRequest, NewErrorResponse(detail))
}
