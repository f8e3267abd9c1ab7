package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/services"
	"github.com/jkusa/portal/internal/middleware"
	"github.com/jkusa/portal/internal/pkg/apperrors"
)

// CatalogController serves the college and school catalog
type CatalogController struct {
	catalogService *services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService *services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListColleges lists all colleges
// @Summary List colleges
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.CollegeResponse "Colleges"
// @Router /colleges [get]
func (c *CatalogController) ListColleges(ctx *gin.Context) {
	colleges, err := c.catalogService.ListColleges(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, colleges)
}

// ListSchools lists the schools under a college
// @Summary List schools of a college
// @Tags catalog
// @Produce json
// @Param id path int true "College ID"
// @Success 200 {array} dto.SchoolResponse "Schools"
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /colleges/{id}/schools [get]
func (c *CatalogController) ListSchools(ctx *gin.Context) {
	collegeID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("College ID must be numeric"))
		return
	}

	schools, err := c.catalogService.ListSchools(ctx.Request.Context(), collegeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, schools)
}
