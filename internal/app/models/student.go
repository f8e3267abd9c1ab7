package models

import (
	"time"
)

// Student defines the student account model based on the 'students' table
type Student struct {
	ID                 int64      `json:"id" db:"id" example:"1"`                                                        // Unique identifier for the student
	FirstName          string     `json:"firstName" db:"first_name" example:"John"`                                      // Student's first name
	LastName           string     `json:"lastName" db:"last_name" example:"Doe"`                                         // Student's last name
	Email              string     `json:"email" db:"email" example:"john.doe@students.jkuat.ac.ke"`                      // Institutional email (unique, stored lowercase)
	PhoneNumber        string     `json:"phoneNumber" db:"phone_number" example:"+254712345678"`                         // Phone number
	RegistrationNumber string     `json:"registrationNumber" db:"registration_number" example:"SCT211-0001/2021"`       // Registration number (unique, stored uppercase)
	CollegeID          int64      `json:"collegeId" db:"college_id" example:"3"`                                         // College the student belongs to
	SchoolID           int64      `json:"schoolId" db:"school_id" example:"12"`                                          // School within the college
	Course             string     `json:"course" db:"course" example:"Computer Science"`                                 // Course of study
	YearOfStudy        int        `json:"yearOfStudy" db:"year_of_study" example:"3"`                                    // Year of study (1..6)
	HashedPassword     string     `json:"-" db:"hashed_password"`                                                        // Salted bcrypt hash (excluded from JSON)
	IsVerified         bool       `json:"isVerified" db:"is_verified" example:"true"`                                    // Whether the email has been verified
	EmailVerifiedAt    *time.Time `json:"emailVerifiedAt,omitempty" db:"email_verified_at"`                              // Timestamp of email verification (nullable)
	FailedLoginCount   int        `json:"-" db:"failed_login_count"`                                                     // Consecutive failed login attempts
	LockedUntil        *time.Time `json:"-" db:"locked_until"`                                                           // Lockout expiry (nullable)
	IsActive           bool       `json:"isActive" db:"is_active" example:"true"`                                        // Soft-deactivation flag; accounts are never hard-deleted
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at" example:"2025-04-20T18:00:00Z"`       // Timestamp of the last successful login (nullable)
	PasswordChangedAt  *time.Time `json:"-" db:"password_changed_at"`                                                    // Timestamp of the last password change (nullable)
	CreatedAt          time.Time  `json:"createdAt" db:"created_at" example:"2025-01-01T10:00:00Z"`                      // Timestamp when the account was created
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at" example:"2025-01-02T15:30:00Z"`                      // Timestamp of the last update
}

// FullName returns the student's full name.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsLocked reports whether the account is inside a lockout window at the
// given instant.
func (s *Student) IsLocked(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}
