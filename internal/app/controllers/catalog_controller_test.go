package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/models"
	"github.com/jkusa/portal/internal/app/models/dto"
	"github.com/jkusa/portal/internal/app/services"
	"github.com/jkusa/portal/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubColleges struct {
	colleges []models.College
	schools  map[int64][]models.School
}

func (s *stubColleges) GetAllColleges(context.Context) ([]models.College, error) {
	return s.colleges, nil
}

func (s *stubColleges) GetCollegeByID(_ context.Context, id int64) (*models.College, error) {
	for i := range s.colleges {
		if s.colleges[i].ID == id {
			return &s.colleges[i], nil
		}
	}
	return nil, apperrors.ErrCollegeNotFound
}

func (s *stubColleges) GetSchoolsByCollegeID(_ context.Context, collegeID int64) ([]models.School, error) {
	return s.schools[collegeID], nil
}

func catalogRouter() *gin.Engine {
	catalogService := services.NewCatalogService(&stubColleges{
		colleges: []models.College{{ID: 1, Name: "COPAS"}},
		schools: map[int64][]models.School{
			1: {{ID: 10, Name: "School of Computing and Information Technology", CollegeID: 1}},
		},
	})
	controller := NewCatalogController(catalogService)

	router := gin.New()
	router.GET("/colleges", controller.ListColleges)
	router.GET("/colleges/:id/schools", controller.ListSchools)
	return router
}

func TestListCollegesHandler(t *testing.T) {
	router := catalogRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/colleges", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var colleges []dto.CollegeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &colleges))
	require.Len(t, colleges, 1)
	assert.Equal(t, "COPAS", colleges[0].Name)
}

func TestListSchoolsHandler(t *testing.T) {
	router := catalogRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/colleges/1/schools", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var schools []dto.SchoolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schools))
	require.Len(t, schools, 1)
	assert.Equal(t, int64(1), schools[0].CollegeID)
}

func TestListSchoolsHandler_UnknownCollege(t *testing.T) {
	router := catalogRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/colleges/99/schools", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestListSchoolsHandler_NonNumericID(t *testing.T) {
	router := catalogRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/colleges/abc/schools", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
