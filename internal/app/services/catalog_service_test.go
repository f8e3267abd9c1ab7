package services

import (
	"context"
	"testing"

	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeColleges struct {
	colleges []models.College
	schools  map[int64][]models.School
}

func (f *fakeColleges) GetAllColleges(context.Context) ([]models.College, error) {
	return f.colleges, nil
}

func (f *fakeColleges) GetCollegeByID(_ context.Context, id int64) (*models.College, error) {
	for i := range f.colleges {
		if f.colleges[i].ID == id {
			return &f.colleges[i], nil
		}
	}
	return nil, apperrors.ErrCollegeNotFound
}

func (f *fakeColleges) GetSchoolsByCollegeID(_ context.Context, collegeID int64) ([]models.School, error) {
	return f.schools[collegeID], nil
}

func newCatalogFixture() *CatalogService {
	return NewCatalogService(&fakeColleges{
		colleges: []models.College{
			{ID: 1, Name: "COPAS"},
			{ID: 2, Name: "COHES"},
		},
		schools: map[int64][]models.School{
			1: {
				{ID: 10, Name: "School of Computing and Information Technology", CollegeID: 1},
				{ID: 11, Name: "School of Mathematical Sciences", CollegeID: 1},
			},
		},
	})
}

func TestListColleges(t *testing.T) {
	service := newCatalogFixture()

	colleges, err := service.ListColleges(context.Background())
	require.NoError(t, err)
	require.Len(t, colleges, 2)
	assert.Equal(t, "COPAS", colleges[0].Name)
}

func TestListSchools(t *testing.T) {
	service := newCatalogFixture()

	schools, err := service.ListSchools(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, int64(1), schools[0].CollegeID)
}

func TestListSchools_UnknownCollege(t *testing.T) {
	service := newCatalogFixture()

	_, err := service.ListSchools(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrCollegeNotFound)
}

func TestListSchools_EmptyCollege(t *testing.T) {
	service := newCatalogFixture()

	schools, err := service.ListSchools(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, schools)
}
