package dto

// RegisterStudentRequest represents a new student account application
type RegisterStudentRequest struct {
	FirstName          string `json:"firstName" binding:"required"`
	LastName           string `json:"lastName" binding:"required"`
	Email              string `json:"email" binding:"required,email"`
	PhoneNumber        string `json:"phoneNumber" binding:"required"`
	RegistrationNumber string `json:"registrationNumber" binding:"required"`
	CollegeID          int64  `json:"collegeId" binding:"required,min=1"`
	SchoolID           int64  `json:"schoolId" binding:"required,min=1"`
	Course             string `json:"course" binding:"required"`
	YearOfStudy        int    `json:"yearOfStudy" binding:"required,min=1,max=6"`
	Password           string `json:"password" binding:"required"`
}

// RegisterResponse reports the outcome of a registration attempt
type RegisterResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Email     string `json:"email"`
	EmailSent bool   `json:"emailSent"`
}

// LoginRequest represents login credentials. LoginID accepts either the
// student email or the registration number.
type LoginRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents issued token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int    `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int    `json:"refreshTokenExpiresIn,omitempty"`
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	Success bool             `json:"success"`
	Token   TokenResponse    `json:"token"`
	Student *StudentResponse `json:"student"`
}

// RefreshTokenRequest represents a token refresh request. The token may also
// arrive via the refresh_token cookie, in which case the body is optional.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// VerifyEmailRequest represents an email verification submission
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResendVerificationRequest asks for a fresh verification email
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetRequest initiates the forgot-password flow
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirmRequest completes the forgot-password flow
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePasswordRequest changes the password of an authenticated student
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}
