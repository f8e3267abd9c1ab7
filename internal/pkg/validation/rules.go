package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Registration number pattern, e.g. SCT211-0001/2021
	RegNumberPattern = `^[A-Z0-9\-/]+$`

	// Phone pattern after normalization (digits with optional leading +)
	PhonePattern = `^\+?[0-9]{10,15}$`

	// Name pattern (letters, spaces, hyphens, apostrophes)
	NamePattern = `^[a-zA-Z\s'\-]+$`

	// Password length bounds
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// Registration number length bounds
	RegNumberMinLength = 5
	RegNumberMaxLength = 20
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email     *regexp.Regexp
	RegNumber *regexp.Regexp
	Phone     *regexp.Regexp
	Name      *regexp.Regexp
}{
	Email:     regexp.MustCompile(EmailPattern),
	RegNumber: regexp.MustCompile(RegNumberPattern),
	Phone:     regexp.MustCompile(PhonePattern),
	Name:      regexp.MustCompile(NamePattern),
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// commonPasswords is a small denylist of trivially guessable passwords.
var commonPasswords = map[string]struct{}{
	"password": {},
	"12345678": {},
	"qwerty":   {},
	"admin":    {},
	"letmein":  {},
}

// ValidateEmail checks general email shape. The institutional domain check is
// a separate policy decision applied by the auth service.
func ValidateEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// NormalizePhone strips separator characters from a phone number.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks a phone number after normalization.
func ValidatePhone(phone string) bool {
	return CompiledPatterns.Phone.MatchString(NormalizePhone(phone))
}

// NormalizeRegNumber upper-cases and trims a registration number.
func NormalizeRegNumber(regNumber string) string {
	return strings.ToUpper(strings.TrimSpace(regNumber))
}

// ValidateRegNumber checks a registration number after normalization.
func ValidateRegNumber(regNumber string) bool {
	normalized := NormalizeRegNumber(regNumber)
	if len(normalized) < RegNumberMinLength || len(normalized) > RegNumberMaxLength {
		return false
	}
	return CompiledPatterns.RegNumber.MatchString(normalized)
}

// ValidateName checks a first or last name.
func ValidateName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 || len(trimmed) > 50 {
		return false
	}
	return CompiledPatterns.Name.MatchString(trimmed)
}

// ValidatePasswordStrength checks the password against length and
// character-class requirements. Returns a user-facing message on failure.
func ValidatePasswordStrength(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLength)
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLength)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasLower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !hasUpper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !hasDigit:
		return fmt.Errorf("password must contain at least one number")
	case !hasSpecial:
		return fmt.Errorf("password must contain at least one special character")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		return fmt.Errorf("password is too common, please choose a stronger password")
	}

	return nil
}
