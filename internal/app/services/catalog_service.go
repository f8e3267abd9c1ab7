package services

import (
	"context"

	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/app/models/dto"
)

type collegeStore interface {
	GetAllColleges(ctx context.Context) ([]models.College, error)
	GetCollegeByID(ctx context.Context, id int64) (*models.College, error)
	GetSchoolsByCollegeID(ctx context.Context, collegeID int64) ([]models.School, error)
}

// CatalogService serves the college and school catalog used by the
// registration form.
type CatalogService struct {
	colleges collegeStore
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(colleges collegeStore) *CatalogService {
	return &CatalogService{
		colleges: colleges,
	}
}

// ListColleges returns every college
func (s *CatalogService) ListColleges(ctx context.Context) ([]dto.CollegeResponse, error) {
	colleges, err := s.colleges.GetAllColleges(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CollegeResponse, 0, len(colleges))
	for _, college := range colleges {
		responses = append(responses, dto.CollegeResponse{
			ID:   college.ID,
			Name: college.Name,
		})
	}

	return responses, nil
}

// ListSchools returns the schools under a college
func (s *CatalogService) ListSchools(ctx context.Context, collegeID int64) ([]dto.SchoolResponse, error) {
	if _, err := s.colleges.GetCollegeByID(ctx, collegeID); err != nil {
		return nil, err
	}

	schools, err := s.colleges.GetSchoolsByCollegeID(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SchoolResponse, 0, len(schools))
	for _, school := range schools {
		responses = append(responses, dto.SchoolResponse{
			ID:        school.ID,
			Name:      school.Name,
			CollegeID: school.CollegeID,
		})
	}

	return responses, nil
}
