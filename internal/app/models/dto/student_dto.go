package dto

import (
	"time"

	"github.com/jkusa/portal/internal/app/models"
)

// StudentResponse represents public student profile information
type StudentResponse struct {
	ID                 int64      `json:"id"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	Email              string     `json:"email"`
	PhoneNumber        string     `json:"phoneNumber"`
	RegistrationNumber string     `json:"registrationNumber"`
	CollegeID          int64      `json:"collegeId"`
	SchoolID           int64      `json:"schoolId"`
	Course             string     `json:"course"`
	YearOfStudy        int        `json:"yearOfStudy"`
	IsVerified         bool       `json:"isVerified"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// NewStudentResponse maps a student model to its public representation
func NewStudentResponse(student *models.Student) *StudentResponse {
	return &StudentResponse{
		ID:                 student.ID,
		FirstName:          student.FirstName,
		LastName:           student.LastName,
		Email:              student.Email,
		PhoneNumber:        student.PhoneNumber,
		RegistrationNumber: student.RegistrationNumber,
		CollegeID:          student.CollegeID,
		SchoolID:           student.SchoolID,
		Course:             student.Course,
		YearOfStudy:        student.YearOfStudy,
		IsVerified:         student.IsVerified,
		LastLoginAt:        student.LastLoginAt,
		CreatedAt:          student.CreatedAt,
	}
}

// CollegeResponse represents a college catalog entry
type CollegeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SchoolResponse represents a school catalog entry
type SchoolResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CollegeID int64  `json:"collegeId"`
}
