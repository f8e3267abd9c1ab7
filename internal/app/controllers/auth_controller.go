// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/app/services"
	"github.com/jkusa/portal/internal/middleware"
	"github.com/rs/zerolog"
)

// AuthController handles student authentication endpoints
type AuthController struct {
	authService   *services.AuthService
	secureCookies bool
	logger        zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, secureCookies bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Register handles student registration
// @Summary Register a new student
// @Description Creates an unverified student account and emails a verification link to the student address.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterStudentRequest true "Student registration information"
// @Success 201 {object} dto.RegisterResponse "Registration accepted, verification email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Email or registration number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	response, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// VerifyEmail handles email verification
// @Summary Verify a student email address
// @Description Consumes a verification token from the emailed link. Tokens are single use.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} dto.SuccessResponse "Email verified"
// @Failure 401 {object} dto.ErrorResponse "Unknown token"
// @Failure 410 {object} dto.ErrorResponse "Token expired or already used"
// @Router /students/auth/verify [post]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		// The emailed link hits this endpoint with a query parameter
		if token := ctx.Query("token"); token != "" {
			req.Token = token
		} else {
			dto.HandleValidationError(ctx, err)
			return
		}
	}

	if err := c.authService.VerifyEmail(ctx.Request.Context(), req.Token); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Email verified. You can now log in."))
}

// ResendVerification handles verification email resends
// @Summary Resend the verification email
// @Description Issues a fresh verification token for an unverified account. The response is identical whether or not the address is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResendVerificationRequest true "Student email"
// @Success 200 {object} dto.SuccessResponse "Resend accepted"
// @Failure 409 {object} dto.ErrorResponse "Email already verified"
// @Failure 429 {object} dto.ErrorResponse "Too many resend requests"
// @Router /students/auth/resend-verification [post]
func (c *AuthController) ResendVerification(ctx *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ResendVerification(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("If the address is registered, a verification email has been sent."))
}

// Login handles student login
// @Summary Log in with email or registration number
// @Description Validates credentials and issues an access/refresh token pair. Repeated failures temporarily lock the account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Authenticated"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not verified or account disabled"
// @Failure 423 {object} dto.ErrorResponse "Account temporarily locked"
// @Failure 429 {object} dto.ErrorResponse "Too many login attempts"
// @Router /students/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	response, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, response.Token)
	ctx.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh
// @Summary Refresh the token pair
// @Description Rotates the refresh token and issues a new access token. The old refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token (optional when the refresh_token cookie is present)"
// @Success 200 {object} dto.TokenResponse "New token pair"
// @Failure 401 {object} dto.ErrorResponse "Unknown or revoked token"
// @Failure 410 {object} dto.ErrorResponse "Token expired"
// @Router /students/auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	refreshToken := c.resolveRefreshToken(ctx)
	if refreshToken == "" {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Refresh token is required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	tokenResponse, err := c.authService.RefreshToken(ctx.Request.Context(), refreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, *tokenResponse)
	ctx.JSON(http.StatusOK, tokenResponse)
}

// Logout handles logout
// @Summary Log out
// @Description Revokes the presented refresh token and clears auth cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token (optional when the refresh_token cookie is present)"
// @Success 200 {object} dto.SuccessResponse "Logged out"
// @Router /students/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if refreshToken := c.resolveRefreshToken(ctx); refreshToken != "" {
		if err := c.authService.Logout(ctx.Request.Context(), refreshToken); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	c.clearAuthCookies(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Logged out."))
}

// RequestPasswordReset handles forgot-password requests
// @Summary Request a password reset email
// @Description Sends a reset link when the address belongs to an account. The response never reveals whether it does.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Student email"
// @Success 200 {object} dto.SuccessResponse "Request accepted"
// @Failure 429 {object} dto.ErrorResponse "Too many reset requests"
// @Router /students/auth/password-reset [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req dto.PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.RequestPasswordReset(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("If the address is registered, a password reset email has been sent."))
}

// ConfirmPasswordReset completes a password reset
// @Summary Complete a password reset
// @Description Consumes a reset token and sets the new password. All refresh tokens for the account are revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetConfirmRequest true "Reset token and new password"
// @Success 200 {object} dto.SuccessResponse "Password updated"
// @Failure 400 {object} dto.ErrorResponse "Weak password"
// @Failure 401 {object} dto.ErrorResponse "Unknown token"
// @Failure 410 {object} dto.ErrorResponse "Token expired or already used"
// @Router /students/auth/password-reset/confirm [post]
func (c *AuthController) ConfirmPasswordReset(ctx *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ConfirmPasswordReset(ctx.Request.Context(), req.Token, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Password updated. You can now log in with your new password."))
}

// ChangePassword changes the password of the authenticated student
// @Summary Change password
// @Description Re-verifies the current password, stores the new one and revokes other sessions.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.SuccessResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Weak password"
// @Failure 401 {object} dto.ErrorResponse "Current password incorrect"
// @Router /students/auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	studentID, ok := middleware.GetStudentID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), studentID, req.CurrentPassword, req.NewPassword); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Password changed."))
}

// Me returns the authenticated student's profile
// @Summary Get own profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StudentResponse "Student profile"
// @Failure 401 {object} dto.ErrorResponse "Not authenticated"
// @Router /students/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	studentID, ok := middleware.GetStudentID(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
		return
	}

	profile, err := c.authService.GetProfile(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// resolveRefreshToken reads the refresh token from the body, falling back to
// the refresh_token cookie.
func (c *AuthController) resolveRefreshToken(ctx *gin.Context) string {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookieToken, err := ctx.Cookie("refresh_token"); err == nil {
		return cookieToken
	}
	return ""
}

// setAuthCookies mirrors the token pair into httponly cookies for browser
// clients. API clients keep using the JSON body.
func (c *AuthController) setAuthCookies(ctx *gin.Context, token dto.TokenResponse) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie("access_token", token.AccessToken, token.ExpiresIn, "/", "", c.secureCookies, true)
	ctx.SetCookie("refresh_token", token.RefreshToken, token.RefreshTokenExpiresIn, "/", "", c.secureCookies, true)
}

func (c *AuthController) clearAuthCookies(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie("access_token", "", -1, "/", "", c.secureCookies, true)
	ctx.SetCookie("refresh_token", "", -1, "/", "", c.secureCookies, true)
}
