package models

import "time"

// College defines the college model based on the 'colleges' table
type College struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"COPAS"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// School defines the school model based on the 'schools' table
type School struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"School of Computing and Information Technology"`
	CollegeID int64     `json:"collegeId" db:"college_id" example:"1"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
